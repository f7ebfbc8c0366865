// wavesim 无界面的生存模式模拟器
//
// 用法：
//
//	go run ./cmd/wavesim -waves 10
//	go run ./cmd/wavesim -tunables data/wave_tunables.yaml -arena data/arena.yaml -waves 25 -verbose
//	go run ./cmd/wavesim -realtime -duration 30s
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/quasilyte/gdata/v2"

	"github.com/gonewx/wavesurvival/pkg/app"
	"github.com/gonewx/wavesurvival/pkg/event"
	"github.com/gonewx/wavesurvival/pkg/types"
)

var (
	verbose   = flag.Bool("verbose", false, "显示详细调试信息")
	waves     = flag.Int("waves", 10, "完成多少波后停止（0 表示不限）")
	startWave = flag.Int("start", 0, "起始波次（0 表示第 1 波或存档点）")
	resume    = flag.Bool("resume", false, "从存档点的下一波继续")
	persist   = flag.Bool("persist", false, "使用 gdata 持久化存档点")
	realtime  = flag.Bool("realtime", false, "按真实时间节奏运行")
	duration  = flag.Duration("duration", 0, "真实时间上限（例如 30s）")
	simTime   = flag.Float64("sim-time", 0, "模拟时间上限（秒）")
	tickRate  = flag.Int("tps", 60, "每秒 tick 数")
	tunables  = flag.String("tunables", "", "波次调参 YAML 路径（默认使用内置值）")
	arena     = flag.String("arena", "", "场地配置 YAML 路径（默认使用内置值）")
	seed      = flag.Int64("seed", 0, "覆盖场地配置中的随机种子")
)

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wavesim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	waveTunables, err := app.LoadTunables(*tunables)
	if err != nil {
		return fmt.Errorf("load tunables: %w", err)
	}
	arenaConfig, err := app.LoadArena(*arena)
	if err != nil {
		return fmt.Errorf("load arena: %w", err)
	}
	if *seed != 0 {
		arenaConfig.Simulation.Seed = *seed
	}

	var storage *gdata.Manager
	if *persist {
		storage, err = gdata.Open(gdata.Config{AppName: "wavesurvival"})
		if err != nil {
			return fmt.Errorf("open checkpoint storage: %w", err)
		}
	}

	session, err := app.NewSession(app.SessionOptions{
		Tunables:  waveTunables,
		Arena:     arenaConfig,
		Storage:   storage,
		Resume:    *resume,
		StartWave: *startWave,
		Verbose:   *verbose,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	printWaveReports(session)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now()
	result, err := app.NewRunner(session, app.RunnerOptions{
		TickRate:    *tickRate,
		Realtime:    *realtime,
		MaxWaves:    *waves,
		MaxSimTime:  *simTime,
		MaxDuration: *duration,
	}).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nstopped: %s after %.1fs simulated (%d ticks, %s wall)\n",
		result.Reason, result.SimulatedTime, result.Ticks, time.Since(started).Round(time.Millisecond))
	fmt.Printf("waves completed: %d (last: %d), session %s\n",
		result.WavesCompleted, result.LastWave, session.Orchestrator().SessionID())
	if *persist {
		fmt.Printf("next run resumes at wave %d\n", session.Checkpoints().ResumeWave())
	}
	return nil
}

// printWaveReports 每波开始和结束时输出一行摘要
func printWaveReports(session *app.Session) {
	o := session.Orchestrator()
	d := session.Dispatcher()

	d.SubscribeFunc(event.WaveStarted, func(e event.Event) {
		cfg := o.CurrentConfig()
		fmt.Printf("%-40s target=%-4d interval=%.3fs roster=%d\n",
			o.CurrentProgression().Description, cfg.TargetCount, cfg.SpawnInterval, len(cfg.ActorRoster))
	})
	d.SubscribeFunc(event.WaveCompleted, func(e event.Event) {
		fmt.Printf("  wave %d complete at t=%.1fs\n", e.WaveNumber, session.World().Elapsed())
	})
	d.SubscribeFunc(event.GateDestroyed, func(e event.Event) {
		fmt.Printf("  %s destroyed\n", e.Zone.GateName())
	})
	d.SubscribeFunc(event.WaveStateChanged, func(e event.Event) {
		if e.State == types.WaveStateCleanup {
			fmt.Printf("  wave %d spawning done, %d alive\n", e.WaveNumber, o.GetActiveEnemyCount())
		}
	})
}
