package systems

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"slices"

	"github.com/google/uuid"

	"github.com/gonewx/wavesurvival/pkg/config"
	"github.com/gonewx/wavesurvival/pkg/event"
	"github.com/gonewx/wavesurvival/pkg/types"
)

// ErrInvalidWaveNumber 波次号必须为正整数
var ErrInvalidWaveNumber = errors.New("wave number must be positive")

// LiveActorCounter 权威的存活数量来源（外部协作方），用于周期性校正
type LiveActorCounter interface {
	CountLiveActors() int
}

// ZoneAccess 编排器对门控制器的依赖
type ZoneAccess interface {
	ApplyActiveZones(zones []types.Zone)
	CloseAll()
}

// OrchestratorOptions 编排器的依赖与参数
type OrchestratorOptions struct {
	Resolver    *ProgressionResolver  // nil 时新建
	Generator   *WaveConfigGenerator  // nil 时使用默认调参
	Gates       ZoneAccess            // 必填
	Arena       *config.ArenaConfig   // nil 时使用默认场地
	Producer    ActorProducer         // 必填
	LiveCounter LiveActorCounter      // 可选：为 nil 时不做校正
	Dispatcher  *event.Dispatcher     // nil 时新建
	Seed        int64                 // 花名册抽取的随机种子
	SessionID   uuid.UUID             // 为零值时自动生成
	// DisableAutoAdvance 为 true 时完成后停在 Complete，不自动开始下一波
	DisableAutoAdvance bool
	Verbose            bool
}

// WaveOrchestrator 波次编排器
//
// 职责：
//   - 驱动波次状态机：Preparing → Active → (Cleanup) → Complete → Transition → Preparing ...
//   - 按进程为每个激活区域的生成点启动一个 SpawnTask
//   - 通过生成/移除通知统计存活数量，并周期性与权威数量校正
//   - 检测完成、通知门控制器、安排下一波
//
// 架构说明：
//   - 由 tick 驱动：所有状态修改都发生在调用 Update 与回调的同一个 goroutine 上，不加锁
//   - 波次号、状态和存活数量只由编排器修改
//   - 配置缺口（无生成点、空花名册）和计数漂移只记录日志，不向上抛出
type WaveOrchestrator struct {
	resolver    *ProgressionResolver
	generator   *WaveConfigGenerator
	gates       ZoneAccess
	producer    ActorProducer
	liveCounter LiveActorCounter
	dispatcher  *event.Dispatcher
	rng         *rand.Rand
	sessionID   uuid.UUID

	spawnPoints []SpawnPoint
	center      types.Position

	delayBetweenWaves float64
	reconcileInterval float64
	autoAdvance       bool
	verbose           bool

	waveNumber     int
	state          types.WaveState
	liveActorCount int
	progression    WaveProgression
	waveConfig     WaveConfig

	tasks          []*SpawnTask
	completedTasks map[*SpawnTask]bool
	isSpawning     bool
	starting       bool

	transitionTimer float64
	reconcileTimer  float64

	producedThisWave int
	removedThisWave  int
}

// NewWaveOrchestrator 创建波次编排器
func NewWaveOrchestrator(opts OrchestratorOptions) (*WaveOrchestrator, error) {
	if opts.Gates == nil {
		return nil, fmt.Errorf("wave orchestrator requires a gate controller")
	}
	if opts.Producer == nil {
		return nil, fmt.Errorf("wave orchestrator requires an actor producer")
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewProgressionResolver()
	}
	generator := opts.Generator
	if generator == nil {
		generator = NewWaveConfigGenerator(nil, resolver)
	}
	arena := opts.Arena
	if arena == nil {
		arena = config.DefaultArenaConfig()
	}
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = event.NewDispatcher()
	}
	sessionID := opts.SessionID
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}

	points := make([]SpawnPoint, 0, len(arena.SpawnPoints))
	for _, sp := range arena.SpawnPoints {
		points = append(points, SpawnPointFromConfig(sp))
	}

	timing := generator.Tunables().Timing
	o := &WaveOrchestrator{
		resolver:          resolver,
		generator:         generator,
		gates:             opts.Gates,
		producer:          opts.Producer,
		liveCounter:       opts.LiveCounter,
		dispatcher:        dispatcher,
		rng:               rand.New(rand.NewSource(opts.Seed)),
		sessionID:         sessionID,
		spawnPoints:       points,
		center:            arena.Center,
		delayBetweenWaves: timing.DelayBetweenWaves,
		reconcileInterval: timing.ReconcileInterval,
		autoAdvance:       !opts.DisableAutoAdvance,
		verbose:           opts.Verbose,
		state:             types.WaveStateIdle,
		completedTasks:    make(map[*SpawnTask]bool),
	}

	log.Printf("[WaveOrchestrator] Created session %s: %d spawn points, delay between waves %.1fs",
		sessionID, len(points), o.delayBetweenWaves)
	return o, nil
}

// StartWave 开始指定波次
//
// 如果上一波的生成任务仍在运行，先强制停止（幂等恢复）。
// 存活数量不会被重置：之前生成的敌人仍然存活，需要逐个移除
func (o *WaveOrchestrator) StartWave(waveNumber int) error {
	if waveNumber <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWaveNumber, waveNumber)
	}

	if len(o.tasks) > 0 {
		log.Printf("[WaveOrchestrator] Warning: starting wave %d while wave %d is still running, stopping it first",
			waveNumber, o.waveNumber)
		o.stopTasks()
	}

	o.waveNumber = waveNumber
	o.transitionTimer = 0
	o.tasks = nil
	o.completedTasks = make(map[*SpawnTask]bool)
	o.producedThisWave = 0
	o.removedThisWave = 0
	o.setState(types.WaveStatePreparing)

	o.progression = o.resolver.Resolve(waveNumber)
	o.waveConfig = o.generator.GenerateConfig(waveNumber, o.progression)

	o.gates.ApplyActiveZones(o.progression.ActiveZones)
	o.dispatch(event.Event{Type: event.ActiveZonesChanged, WaveNumber: waveNumber, Zones: slices.Clone(o.progression.ActiveZones)})

	spawnerCount := o.generator.SpawnerCount(o.progression.Phase)
	assignments, emptyZones := PlanSpawnAssignments(o.spawnPoints, o.progression.ActiveZones, o.center,
		spawnerCount, o.waveConfig.TargetCount)
	for _, zone := range emptyZones {
		log.Printf("[WaveOrchestrator] Warning: wave %d zone %s has no spawn points, contributing 0 actors",
			waveNumber, zone)
	}
	if len(o.waveConfig.ActorRoster) == 0 {
		log.Printf("[WaveOrchestrator] Warning: wave %d (%s) has an empty actor roster", waveNumber, o.progression.Phase)
	}

	log.Printf("[WaveOrchestrator] %s | target=%d interval=%.3fs roster=%d tasks=%d",
		o.progression.Description, o.waveConfig.TargetCount, o.waveConfig.SpawnInterval,
		len(o.waveConfig.ActorRoster), len(assignments))

	o.dispatch(event.Event{Type: event.WaveStarted, WaveNumber: waveNumber})
	o.setState(types.WaveStateActive)

	// 先登记全部任务再启动，避免第一个立即完成的任务造成误判
	o.tasks = make([]*SpawnTask, 0, len(assignments))
	for _, a := range assignments {
		task := NewSpawnTask(a.Point, o.producer, o, rand.New(rand.NewSource(o.rng.Int63())))
		o.tasks = append(o.tasks, task)
	}

	o.starting = true
	for i, task := range o.tasks {
		task.Start(SpawnTaskConfig{
			WaveNumber:  waveNumber,
			Roster:      o.waveConfig.ActorRoster,
			TargetCount: assignments[i].TargetCount,
			Interval:    o.waveConfig.SpawnInterval,
		}, assignments[i].StaggerIndex)
	}
	o.starting = false

	o.refreshSpawning()
	o.evaluateCompletion()
	return nil
}

// StopWave 取消本波所有生成任务
// 不回滚存活数量；取消等待中的下一波，状态回到 Idle
func (o *WaveOrchestrator) StopWave() {
	hadTasks := len(o.tasks) > 0
	o.stopTasks()
	o.transitionTimer = 0
	if o.state != types.WaveStateIdle {
		o.setState(types.WaveStateIdle)
	}
	if hadTasks {
		log.Printf("[WaveOrchestrator] Wave %d stopped: produced=%d live=%d", o.waveNumber, o.producedThisWave, o.liveActorCount)
	}
}

// Update 推进一帧
//
// 参数：
//   - deltaTime: 自上一帧以来经过的时间（秒）
func (o *WaveOrchestrator) Update(deltaTime float64) {
	switch o.state {
	case types.WaveStateActive, types.WaveStateCleanup:
		tasks := o.tasks
		for _, task := range tasks {
			task.Update(deltaTime)
		}
		o.refreshSpawning()

	case types.WaveStateTransition:
		o.transitionTimer -= deltaTime
		if o.transitionTimer <= 0 {
			next := o.waveNumber + 1
			if err := o.StartWave(next); err != nil {
				log.Printf("[WaveOrchestrator] ERROR: failed to start wave %d: %v", next, err)
			}
		}
	}

	if o.liveCounter != nil && o.reconcileInterval > 0 {
		o.reconcileTimer += deltaTime
		if o.reconcileTimer >= o.reconcileInterval {
			o.reconcileTimer = 0
			o.ReconcileNow()
		}
	}

	o.evaluateCompletion()
}

// OnActorProduced 实现 SpawnListener：存活数 +1
func (o *WaveOrchestrator) OnActorProduced(task *SpawnTask, handle types.ActorHandle, kind types.ActorKind) {
	o.liveActorCount++
	o.producedThisWave++
	if o.verbose {
		log.Printf("[WaveOrchestrator] Produced %s #%d at %s (%d/%d), live=%d",
			kind, handle, task.Point().ID, task.SpawnedCount(), task.TargetCount(), o.liveActorCount)
	}
}

// OnSpawnTaskCompleted 实现 SpawnListener：登记完成并检查波次是否结束
func (o *WaveOrchestrator) OnSpawnTaskCompleted(task *SpawnTask) {
	if !o.isCurrentTask(task) {
		return
	}
	o.completedTasks[task] = true
	if o.verbose {
		log.Printf("[WaveOrchestrator] Spawn task %s completed (%d/%d tasks)",
			task.Point().ID, len(o.completedTasks), len(o.tasks))
	}
	if o.starting {
		return
	}
	o.refreshSpawning()
	o.evaluateCompletion()
}

// OnActorRemoved 敌人移除通知：存活数 -1，不低于 0
// 移除多于生成（例如与校正竞争）视为可修正的漂移
func (o *WaveOrchestrator) OnActorRemoved(handle types.ActorHandle) {
	o.removedThisWave++
	if o.liveActorCount == 0 {
		log.Printf("[WaveOrchestrator] Warning: removal of #%d with live count already 0, clamping", handle)
	} else {
		o.liveActorCount--
	}
	o.evaluateCompletion()
}

// ReconcileNow 立即与权威存活数量校正
func (o *WaveOrchestrator) ReconcileNow() {
	if o.liveCounter == nil {
		return
	}
	actual := o.liveCounter.CountLiveActors()
	if actual < 0 {
		actual = 0
	}
	if actual == o.liveActorCount {
		return
	}
	log.Printf("[WaveOrchestrator] Live count drift: tracked=%d authoritative=%d, correcting", o.liveActorCount, actual)
	o.liveActorCount = actual
	o.evaluateCompletion()
}

// evaluateCompletion 完成检测
// 所有任务都已汇报完成且存活数为 0 才进入 Complete；任务完成但仍有存活敌人时进入 Cleanup
func (o *WaveOrchestrator) evaluateCompletion() {
	if o.starting {
		return
	}
	if o.state != types.WaveStateActive && o.state != types.WaveStateCleanup {
		return
	}
	if len(o.completedTasks) < len(o.tasks) {
		return
	}
	if o.liveActorCount > 0 {
		if o.state == types.WaveStateActive {
			o.setState(types.WaveStateCleanup)
		}
		return
	}
	o.completeWave()
}

// completeWave 进入 Complete：发出完成通知、立即关闭所有门，再进入波间等待
func (o *WaveOrchestrator) completeWave() {
	waveNumber := o.waveNumber
	o.isSpawning = false
	o.tasks = nil
	o.completedTasks = make(map[*SpawnTask]bool)
	o.setState(types.WaveStateComplete)

	log.Printf("[WaveOrchestrator] Wave %d complete: produced=%d removed=%d", waveNumber, o.producedThisWave, o.removedThisWave)
	o.dispatch(event.Event{Type: event.WaveCompleted, WaveNumber: waveNumber})
	o.gates.CloseAll()

	// 订阅者可能已经开始或停止了波次
	if o.state != types.WaveStateComplete || o.waveNumber != waveNumber {
		return
	}
	if o.autoAdvance {
		o.transitionTimer = o.delayBetweenWaves
		o.setState(types.WaveStateTransition)
	}
}

func (o *WaveOrchestrator) stopTasks() {
	for _, task := range o.tasks {
		task.Stop()
	}
	o.tasks = nil
	o.completedTasks = make(map[*SpawnTask]bool)
	o.isSpawning = false
}

func (o *WaveOrchestrator) refreshSpawning() {
	spawning := false
	for _, task := range o.tasks {
		if task.IsRunning() {
			spawning = true
			break
		}
	}
	o.isSpawning = spawning
}

func (o *WaveOrchestrator) isCurrentTask(task *SpawnTask) bool {
	for _, t := range o.tasks {
		if t == task {
			return true
		}
	}
	return false
}

func (o *WaveOrchestrator) setState(state types.WaveState) {
	if o.state == state {
		return
	}
	previous := o.state
	o.state = state
	if o.verbose {
		log.Printf("[WaveOrchestrator] Wave %d: %s -> %s", o.waveNumber, previous, state)
	}
	o.dispatch(event.Event{Type: event.WaveStateChanged, WaveNumber: o.waveNumber, State: state})
}

func (o *WaveOrchestrator) dispatch(e event.Event) {
	o.dispatcher.Dispatch(e)
}

// GetActiveEnemyCount 当前存活数量
func (o *WaveOrchestrator) GetActiveEnemyCount() int { return o.liveActorCount }

// CurrentWaveNumber 当前波次号（尚未开始时为 0）
func (o *WaveOrchestrator) CurrentWaveNumber() int { return o.waveNumber }

// CurrentWaveState 当前状态
func (o *WaveOrchestrator) CurrentWaveState() types.WaveState { return o.state }

// CurrentProgression 当前波次的进程（返回副本）
func (o *WaveOrchestrator) CurrentProgression() WaveProgression {
	p := o.progression
	p.ActiveZones = slices.Clone(p.ActiveZones)
	return p
}

// CurrentConfig 当前波次的数值参数（返回副本）
func (o *WaveOrchestrator) CurrentConfig() WaveConfig {
	c := o.waveConfig
	c.ActorRoster = slices.Clone(c.ActorRoster)
	return c
}

// IsSpawning 是否还有生成任务在运行
func (o *WaveOrchestrator) IsSpawning() bool { return o.isSpawning }

// TimeUntilNextWave 波间等待剩余时间（秒），不在 Transition 时为 0
func (o *WaveOrchestrator) TimeUntilNextWave() float64 {
	if o.state != types.WaveStateTransition || o.transitionTimer < 0 {
		return 0
	}
	return o.transitionTimer
}

// Tasks 当前波次的生成任务（只读使用）
func (o *WaveOrchestrator) Tasks() []*SpawnTask {
	result := make([]*SpawnTask, len(o.tasks))
	copy(result, o.tasks)
	return result
}

// SessionID 会话标识
func (o *WaveOrchestrator) SessionID() uuid.UUID { return o.sessionID }

// Dispatcher 事件分发器（用于订阅通知）
func (o *WaveOrchestrator) Dispatcher() *event.Dispatcher { return o.dispatcher }
