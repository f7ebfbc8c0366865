package main

import (
	"flag"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"

	"github.com/gonewx/wavesurvival/pkg/app"
	"github.com/gonewx/wavesurvival/pkg/embedded"
)

var (
	verbose   = flag.Bool("verbose", false, "显示详细调试信息")
	startWave = flag.Int("wave", 0, "起始波次（0 表示从存档点继续）")
	tunables  = flag.String("tunables", "", "波次调参 YAML 路径（默认使用嵌入数据）")
	arena     = flag.String("arena", "", "场地配置 YAML 路径（默认使用嵌入数据）")
)

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	// 初始化嵌入数据
	// dataFS 在 embed.go 中声明
	embedded.Init(dataFS)

	waveTunables, err := app.LoadTunables(*tunables)
	if err != nil {
		log.Fatalf("Failed to load wave tunables: %v", err)
	}
	arenaConfig, err := app.LoadArena(*arena)
	if err != nil {
		log.Fatalf("Failed to load arena: %v", err)
	}

	// 存档点存储失败时降级为仅内存
	storage, err := gdata.Open(gdata.Config{AppName: "wavesurvival"})
	if err != nil {
		log.Printf("Warning: gdata unavailable, checkpoints will not persist: %v", err)
		storage = nil
	}

	session, err := app.NewSession(app.SessionOptions{
		Tunables:  waveTunables,
		Arena:     arenaConfig,
		Storage:   storage,
		Resume:    *startWave == 0,
		StartWave: *startWave,
		Verbose:   *verbose,
	})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	defer session.Close()

	game := app.NewApp(app.Config{Verbose: *verbose}, session)

	ebiten.SetWindowSize(app.WindowWidth, app.WindowHeight)
	ebiten.SetWindowTitle("Wave Survival")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
