package app

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"

	"github.com/gonewx/wavesurvival/pkg/config"
	"github.com/gonewx/wavesurvival/pkg/event"
	"github.com/gonewx/wavesurvival/pkg/game"
	"github.com/gonewx/wavesurvival/pkg/systems"
	"github.com/gonewx/wavesurvival/pkg/types"
)

// SessionOptions 会话构造参数
type SessionOptions struct {
	Tunables *config.WaveTunables // nil 时使用默认调参
	Arena    *config.ArenaConfig  // nil 时使用默认场地

	// Storage 存档点使用的 gdata 存储，可为 nil（不持久化）
	Storage *gdata.Manager
	// Resume 从存档点的下一波开始（优先级低于 StartWave）
	Resume bool
	// StartWave 起始波次，0 表示第 1 波（或存档点）
	StartWave int

	DisableAutoAdvance bool
	Verbose            bool
}

// Session 一局生存模式
//
// 负责按依赖注入组装所有组件：分发器、门控制器、敌人世界、编排器和存档点。
// 所有组件都在同一个 goroutine 中由 Update 驱动
type Session struct {
	dispatcher   *event.Dispatcher
	gates        *systems.GateController
	world        *game.ActorWorld
	orchestrator *systems.WaveOrchestrator
	checkpoints  *game.CheckpointManager
	arena        *config.ArenaConfig

	startWave      int
	completedWaves int
	lastCompleted  int
}

// NewSession 创建会话
func NewSession(opts SessionOptions) (*Session, error) {
	tunables := opts.Tunables
	if tunables == nil {
		tunables = config.DefaultWaveTunables()
	}
	arena := opts.Arena
	if arena == nil {
		arena = config.DefaultArenaConfig()
	}

	dispatcher := event.NewDispatcher()
	gates := systems.NewGateController(arena, dispatcher)
	world := game.NewActorWorld(arena.Simulation)
	resolver := systems.NewProgressionResolver()

	orchestrator, err := systems.NewWaveOrchestrator(systems.OrchestratorOptions{
		Resolver:           resolver,
		Generator:          systems.NewWaveConfigGenerator(tunables, resolver),
		Gates:              gates,
		Arena:              arena,
		Producer:           world,
		LiveCounter:        world,
		Dispatcher:         dispatcher,
		Seed:               arena.Simulation.Seed,
		DisableAutoAdvance: opts.DisableAutoAdvance,
		Verbose:            opts.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create wave orchestrator: %w", err)
	}
	world.OnRemoved(orchestrator.OnActorRemoved)

	checkpoints := game.NewCheckpointManager(opts.Storage)
	checkpoints.Attach(dispatcher, orchestrator.SessionID())

	s := &Session{
		dispatcher:   dispatcher,
		gates:        gates,
		world:        world,
		orchestrator: orchestrator,
		checkpoints:  checkpoints,
		arena:        arena,
	}

	switch {
	case opts.StartWave > 0:
		s.startWave = opts.StartWave
	case opts.Resume:
		s.startWave = checkpoints.ResumeWave()
	default:
		s.startWave = 1
	}

	dispatcher.SubscribeFunc(event.WaveCompleted, func(e event.Event) {
		s.completedWaves++
		s.lastCompleted = e.WaveNumber
	})

	log.Printf("[Session] Created session %s, first wave %d", orchestrator.SessionID(), s.startWave)
	return s, nil
}

// Start 开始第一波
func (s *Session) Start() error {
	return s.orchestrator.StartWave(s.startWave)
}

// Stop 停止当前波次
func (s *Session) Stop() {
	s.orchestrator.StopWave()
}

// Toggle 在运行与停止之间切换；停止后再开始会重新开始当前波次
func (s *Session) Toggle() error {
	if s.orchestrator.CurrentWaveState() != types.WaveStateIdle {
		s.Stop()
		return nil
	}
	wave := s.orchestrator.CurrentWaveNumber()
	if wave < 1 {
		wave = s.startWave
	}
	return s.orchestrator.StartWave(wave)
}

// Update 推进一帧：先推进敌人世界（发出移除通知），再推进编排器
func (s *Session) Update(deltaTime float64) {
	s.world.Update(deltaTime)
	s.orchestrator.Update(deltaTime)
}

// Close 解除存档点订阅
func (s *Session) Close() {
	s.checkpoints.Detach()
}

// Dispatcher 事件分发器
func (s *Session) Dispatcher() *event.Dispatcher { return s.dispatcher }

// Gates 门控制器
func (s *Session) Gates() *systems.GateController { return s.gates }

// World 敌人世界
func (s *Session) World() *game.ActorWorld { return s.world }

// Orchestrator 波次编排器
func (s *Session) Orchestrator() *systems.WaveOrchestrator { return s.orchestrator }

// Checkpoints 存档点管理器
func (s *Session) Checkpoints() *game.CheckpointManager { return s.checkpoints }

// Arena 场地配置
func (s *Session) Arena() *config.ArenaConfig { return s.arena }

// StartWave 首个波次
func (s *Session) StartWave() int { return s.startWave }

// CompletedWaves 本局已完成的波次数量
func (s *Session) CompletedWaves() int { return s.completedWaves }

// LastCompletedWave 最近完成的波次号
func (s *Session) LastCompletedWave() int { return s.lastCompleted }
