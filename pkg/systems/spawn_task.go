package systems

import (
	"log"
	"math/rand"

	"github.com/gonewx/wavesurvival/pkg/config"
	"github.com/gonewx/wavesurvival/pkg/types"
)

// ActorProducer 敌人生成接口（外部协作方）
// 编排核心不关心敌人如何渲染，只需要拿到句柄
type ActorProducer interface {
	Produce(kind types.ActorKind, at types.Position) (types.ActorHandle, error)
}

// SpawnListener 生成任务的回调接口
// 生成任务只通过这一个接口向上汇报
type SpawnListener interface {
	// OnActorProduced 每生成一个敌人调用一次
	OnActorProduced(task *SpawnTask, handle types.ActorHandle, kind types.ActorKind)
	// OnSpawnTaskCompleted 自然完成时调用，且只调用一次（Stop 不会触发）
	OnSpawnTaskCompleted(task *SpawnTask)
}

// SpawnPoint 生成点（属于唯一的区域）
type SpawnPoint struct {
	ID       string
	Zone     types.Zone
	Position types.Position
}

// SpawnPointFromConfig 从场地配置构造生成点
func SpawnPointFromConfig(cfg config.SpawnPointConfig) SpawnPoint {
	return SpawnPoint{ID: cfg.ID, Zone: cfg.Zone, Position: cfg.Position()}
}

// SpawnTaskConfig 单个生成任务的参数
type SpawnTaskConfig struct {
	WaveNumber  int
	Roster      []types.ActorKind
	TargetCount int
	Interval    float64
}

// SpawnTask 生成任务
//
// 职责：
//   - 为一个生成点在一波内按节奏逐个生成敌人
//   - 首个敌人在错开延迟（interval × staggerIndex）后生成，同区域的多个生成点因此错开
//
// 架构说明：
//   - 由 tick 驱动：每帧调用 Update(deltaTime)，不使用协程，不需要加锁
//   - 状态私有，编排器只通过 SpawnListener 通知观察它
type SpawnTask struct {
	point    SpawnPoint
	producer ActorProducer
	listener SpawnListener
	rng      *rand.Rand

	waveNumber   int
	roster       []types.ActorKind
	targetCount  int
	interval     float64
	initialDelay float64

	spawnedCount int
	isRunning    bool
	completed    bool
	pastInitial  bool
	timer        float64
}

// NewSpawnTask 创建生成任务
//
// 参数：
//   - point: 所属生成点
//   - producer: 敌人生成接口
//   - listener: 回调接口（通常为 WaveOrchestrator）
//   - rng: 花名册抽取使用的随机源，nil 时使用固定种子
func NewSpawnTask(point SpawnPoint, producer ActorProducer, listener SpawnListener, rng *rand.Rand) *SpawnTask {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &SpawnTask{
		point:    point,
		producer: producer,
		listener: listener,
		rng:      rng,
	}
}

// Start 开始生成
//
// 参数：
//   - cfg: 本任务的生成参数
//   - staggerIndex: 在同区域生成点中的排序序号（0 表示无延迟）
//
// 花名册为空或目标数为 0 时记录日志并立即完成，不视为错误
func (t *SpawnTask) Start(cfg SpawnTaskConfig, staggerIndex int) {
	if t.isRunning {
		t.Stop()
	}
	if staggerIndex < 0 {
		staggerIndex = 0
	}

	interval := cfg.Interval
	if interval < config.DefaultMinSpawnInterval {
		interval = config.DefaultMinSpawnInterval
	}

	t.waveNumber = cfg.WaveNumber
	t.roster = cfg.Roster
	t.targetCount = cfg.TargetCount
	t.interval = interval
	t.initialDelay = interval * float64(staggerIndex)
	t.spawnedCount = 0
	t.completed = false
	t.pastInitial = false
	t.timer = 0

	if len(t.roster) == 0 {
		log.Printf("[SpawnTask] Warning: wave %d spawn point %s (%s) has an empty roster, nothing to spawn",
			t.waveNumber, t.point.ID, t.point.Zone)
		t.isRunning = false
		t.complete()
		return
	}
	if t.targetCount <= 0 {
		t.isRunning = false
		t.complete()
		return
	}

	t.isRunning = true
	log.Printf("[SpawnTask] Wave %d: %s (%s) target=%d interval=%.2fs delay=%.2fs",
		t.waveNumber, t.point.ID, t.point.Zone, t.targetCount, t.interval, t.initialDelay)
}

// Update 推进计时
//
// 参数：
//   - deltaTime: 自上一帧以来经过的时间（秒）
//
// 返回：
//   - running: 调用结束后是否仍在生成
//   - produced: 本帧生成的数量（deltaTime 较大时可能多于 1）
func (t *SpawnTask) Update(deltaTime float64) (running bool, produced int) {
	if !t.isRunning {
		return false, 0
	}
	if deltaTime > 0 {
		t.timer += deltaTime
	}

	for t.isRunning {
		wait := t.interval
		if !t.pastInitial {
			wait = t.initialDelay
		}
		if t.timer < wait {
			break
		}
		t.timer -= wait
		t.pastInitial = true

		t.produceOne()
		produced++

		// 回调中可能调用了 Stop
		if !t.isRunning {
			break
		}
		if t.spawnedCount >= t.targetCount {
			t.isRunning = false
			t.complete()
		}
	}

	return t.isRunning, produced
}

// Stop 取消等待中的生成并标记为停止；可重复调用
func (t *SpawnTask) Stop() {
	if !t.isRunning {
		return
	}
	t.isRunning = false
	log.Printf("[SpawnTask] Wave %d: %s stopped at %d/%d", t.waveNumber, t.point.ID, t.spawnedCount, t.targetCount)
}

// produceOne 按花名册随机生成一个敌人
// 生成失败时仍计入 spawnedCount（保证任务能够结束），但不汇报生成
func (t *SpawnTask) produceOne() {
	kind := t.roster[t.rng.Intn(len(t.roster))]
	handle, err := t.producer.Produce(kind, t.point.Position)
	t.spawnedCount++
	if err != nil {
		log.Printf("[SpawnTask] Warning: failed to produce %s at %s: %v", kind, t.point.ID, err)
		return
	}
	if t.listener != nil {
		t.listener.OnActorProduced(t, handle, kind)
	}
}

// complete 汇报完成（只汇报一次）
func (t *SpawnTask) complete() {
	if t.completed {
		return
	}
	t.completed = true
	if t.listener != nil {
		t.listener.OnSpawnTaskCompleted(t)
	}
}

// Point 所属生成点
func (t *SpawnTask) Point() SpawnPoint { return t.point }

// Zone 所属区域
func (t *SpawnTask) Zone() types.Zone { return t.point.Zone }

// SpawnedCount 已生成数量
func (t *SpawnTask) SpawnedCount() int { return t.spawnedCount }

// TargetCount 目标数量
func (t *SpawnTask) TargetCount() int { return t.targetCount }

// Interval 生成间隔（秒）
func (t *SpawnTask) Interval() float64 { return t.interval }

// InitialDelay 首个敌人前的错开延迟（秒）
func (t *SpawnTask) InitialDelay() float64 { return t.initialDelay }

// IsRunning 是否仍在生成
func (t *SpawnTask) IsRunning() bool { return t.isRunning }

// IsCompleted 是否已自然完成
func (t *SpawnTask) IsCompleted() bool { return t.completed }
