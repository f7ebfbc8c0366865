// Package app 提供生存模式的会话组装、无界面运行器和 Ebitengine 窗口包装器
//
// 桌面端通过 main.go 调用 NewApp()，命令行模拟器通过 cmd/wavesim 使用 Runner。
package app

import (
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/gonewx/wavesurvival/pkg/types"
)

// 窗口尺寸（与默认场地坐标一致）
const (
	WindowWidth  = 800
	WindowHeight = 600
)

// GateDamagePerPress 每次按键对门造成的伤害
const GateDamagePerPress = 125.0

var (
	backgroundColor = color.RGBA{R: 34, G: 40, B: 49, A: 255}
	centerColor     = color.RGBA{R: 80, G: 90, B: 110, A: 255}
	openGateColor   = color.RGBA{R: 90, G: 200, B: 120, A: 255}
	closedGateColor = color.RGBA{R: 200, G: 70, B: 70, A: 255}
	brokenGateColor = color.RGBA{R: 240, G: 180, B: 40, A: 255}
	spawnPointColor = color.RGBA{R: 150, G: 150, B: 255, A: 255}
	actorColor      = color.RGBA{R: 255, G: 240, B: 220, A: 255}
)

// gateKeys 数字键 1-4 对应的门
var gateKeys = []struct {
	key  ebiten.Key
	zone types.Zone
}{
	{ebiten.Key1, types.ZoneNorth},
	{ebiten.Key2, types.ZoneEast},
	{ebiten.Key3, types.ZoneSouth},
	{ebiten.Key4, types.ZoneWest},
}

// Config 定义窗口应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
}

// App 生存模式窗口应用，实现 ebiten.Game 接口
//
// 按键：
//   - Space: 开始/停止当前波次
//   - 1-4: 对北、东、南、西门造成伤害
//   - K: 击杀所有存活敌人
//   - R: 立即校正存活数量
//   - P: 暂停
//   - F11: 切换全屏
type App struct {
	session *Session
	verbose bool
	paused  bool
	message string
}

// NewApp 创建窗口应用
func NewApp(cfg Config, session *Session) *App {
	return &App{
		session: session,
		verbose: cfg.Verbose,
		message: "Press Space to start",
	}
}

// Update 更新逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if err := a.session.Toggle(); err != nil {
			log.Printf("[App] ERROR: %v", err)
			a.message = err.Error()
		} else {
			a.message = ""
		}
	}

	for _, gk := range gateKeys {
		if inpututil.IsKeyJustPressed(gk.key) {
			if err := a.session.Gates().ApplyDamage(gk.zone, GateDamagePerPress); err != nil {
				log.Printf("[App] ERROR: %v", err)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyK) {
		killed := a.session.World().KillAll()
		a.message = fmt.Sprintf("Killed %d actors", killed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.session.Orchestrator().ReconcileNow()
	}

	if a.paused {
		return nil
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.session.Update(deltaTime)
	return nil
}

// Draw 绘制场地、门、生成点、敌人和状态文字
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	arena := a.session.Arena()
	center := arena.Center
	vector.DrawFilledRect(screen, float32(center.X-120), float32(center.Y-90), 240, 180, centerColor, false)

	a.drawGates(screen, center)

	for _, sp := range arena.SpawnPoints {
		vector.DrawFilledCircle(screen, float32(sp.X), float32(sp.Y), 6, spawnPointColor, true)
	}
	for _, actor := range a.session.World().Actors() {
		vector.DrawFilledCircle(screen, float32(actor.Position.X), float32(actor.Position.Y), 4, actorColor, true)
	}

	ebitenutil.DebugPrint(screen, a.statusText())
}

// drawGates 在中心区四边绘制门
func (a *App) drawGates(screen *ebiten.Image, center types.Position) {
	gates := a.session.Gates()
	rects := map[types.Zone][4]float32{
		types.ZoneNorth: {float32(center.X - 40), float32(center.Y - 100), 80, 12},
		types.ZoneSouth: {float32(center.X - 40), float32(center.Y + 88), 80, 12},
		types.ZoneWest:  {float32(center.X - 130), float32(center.Y - 40), 12, 80},
		types.ZoneEast:  {float32(center.X + 118), float32(center.Y - 40), 12, 80},
	}

	for _, zone := range types.OuterZones {
		gate, ok := gates.Gate(zone)
		if !ok {
			continue
		}
		clr := closedGateColor
		switch {
		case gate.Destroyed:
			clr = brokenGateColor
		case gate.IsOpen:
			clr = openGateColor
		}
		r := rects[zone]
		vector.DrawFilledRect(screen, r[0], r[1], r[2], r[3], clr, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.0f", gate.Health), int(r[0]), int(r[1]+r[3]+2))
	}
}

func (a *App) statusText() string {
	o := a.session.Orchestrator()
	var b strings.Builder

	progression := o.CurrentProgression()
	fmt.Fprintf(&b, "Wave %d  [%s]\n", o.CurrentWaveNumber(), o.CurrentWaveState())
	if progression.Description != "" {
		fmt.Fprintf(&b, "%s\n", progression.Description)
	}
	cfg := o.CurrentConfig()
	fmt.Fprintf(&b, "Target %d  Interval %.2fs  Live %d  Spawning %v\n",
		cfg.TargetCount, cfg.SpawnInterval, o.GetActiveEnemyCount(), o.IsSpawning())
	if wait := o.TimeUntilNextWave(); wait > 0 {
		fmt.Fprintf(&b, "Next wave in %.1fs\n", wait)
	}
	fmt.Fprintf(&b, "Open: %s  Completed: %d\n", types.FormatZones(a.session.Gates().OpenZones()), a.session.CompletedWaves())
	if a.paused {
		b.WriteString("PAUSED\n")
	}
	if a.message != "" {
		b.WriteString(a.message + "\n")
	}
	b.WriteString("Space start/stop  1-4 hit gate  K kill all  R reconcile  P pause")
	return b.String()
}

// Layout 返回逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return WindowWidth, WindowHeight
}

// Session 返回会话（用于退出时清理）
func (a *App) Session() *Session {
	return a.session
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
