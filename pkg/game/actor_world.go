package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/gonewx/wavesurvival/pkg/components"
	"github.com/gonewx/wavesurvival/pkg/config"
	"github.com/gonewx/wavesurvival/pkg/ecs"
	"github.com/gonewx/wavesurvival/pkg/systems"
	"github.com/gonewx/wavesurvival/pkg/types"
)

var (
	// ErrEmptyActorKind 敌人类型为空
	ErrEmptyActorKind = errors.New("actor kind is empty")
	// ErrUnknownActor 句柄不存在或已被移除
	ErrUnknownActor = errors.New("unknown actor")
)

// ActorSnapshot 敌人的只读快照（供渲染和命令行输出使用）
type ActorSnapshot struct {
	Handle    types.ActorHandle
	Kind      types.ActorKind
	Position  types.Position
	Remaining float64
}

// ActorWorld 基于 ECS 的敌人世界
//
// 职责：
//   - 实现 ActorProducer：为每个生成请求创建实体
//   - 实现 LiveActorCounter：提供权威的存活数量（直到移除通知发出前都计入）
//   - 用随机存活时间模拟战斗，时间耗尽或被击杀的敌人在帧末统一移除
//   - 每个被移除的敌人恰好通知一次 OnRemoved 订阅者
type ActorWorld struct {
	em        *ecs.EntityManager
	lifetimes *systems.LifetimeSystem
	rng       *rand.Rand

	minLifetime float64
	maxLifetime float64
	elapsed     float64

	removedListeners []func(handle types.ActorHandle)
}

// NewActorWorld 创建敌人世界
// sim 中的存活时间范围决定每个敌人在被自动移除前存活多久
func NewActorWorld(sim config.SimulationConfig) *ActorWorld {
	minLifetime := sim.MinLifetime
	maxLifetime := sim.MaxLifetime
	if minLifetime <= 0 {
		minLifetime = config.DefaultMinLifetime
	}
	if maxLifetime < minLifetime {
		maxLifetime = minLifetime
	}

	em := ecs.NewEntityManager()
	return &ActorWorld{
		em:          em,
		lifetimes:   systems.NewLifetimeSystem(em),
		rng:         rand.New(rand.NewSource(sim.Seed)),
		minLifetime: minLifetime,
		maxLifetime: maxLifetime,
	}
}

// OnRemoved 注册移除回调
func (w *ActorWorld) OnRemoved(fn func(handle types.ActorHandle)) {
	w.removedListeners = append(w.removedListeners, fn)
}

// Produce 实现 ActorProducer
func (w *ActorWorld) Produce(kind types.ActorKind, at types.Position) (types.ActorHandle, error) {
	if kind == "" {
		return 0, ErrEmptyActorKind
	}

	id := w.em.CreateEntity()
	ecs.AddComponent(w.em, id, &components.ActorComponent{
		Kind:      kind,
		Position:  at,
		SpawnedAt: w.elapsed,
	})
	ecs.AddComponent(w.em, id, &components.LifetimeComponent{
		MaxLifetime: w.rollLifetime(),
	})

	return types.ActorHandle(id), nil
}

// CountLiveActors 实现 LiveActorCounter
// 已标记移除但尚未发出 OnRemoved 通知的敌人仍然计入，
// 保证校正后的数量与随后到达的移除通知一致
func (w *ActorWorld) CountLiveActors() int {
	return len(ecs.GetEntitiesWith1[*components.ActorComponent](w.em))
}

// Kill 击杀敌人（在下一次 Update 时移除并通知）
func (w *ActorWorld) Kill(handle types.ActorHandle) error {
	id := ecs.EntityID(handle)
	if !ecs.HasComponent[*components.ActorComponent](w.em, id) || w.em.IsMarkedForDestroy(id) {
		return fmt.Errorf("%w: #%d", ErrUnknownActor, handle)
	}
	w.em.DestroyEntity(id)
	return nil
}

// KillAll 击杀所有存活敌人，返回数量
func (w *ActorWorld) KillAll() int {
	killed := 0
	for _, id := range ecs.GetEntitiesWith1[*components.ActorComponent](w.em) {
		if w.em.IsMarkedForDestroy(id) {
			continue
		}
		w.em.DestroyEntity(id)
		killed++
	}
	return killed
}

// Update 推进存活时间并移除到期或被击杀的敌人
//
// 参数：
//   - deltaTime: 自上一帧以来经过的时间（秒）
//
// 返回：
//   - int: 本帧移除的敌人数量
func (w *ActorWorld) Update(deltaTime float64) int {
	w.elapsed += deltaTime
	w.lifetimes.Update(deltaTime)

	removed := w.em.RemoveMarkedEntities()
	for _, id := range removed {
		handle := types.ActorHandle(id)
		for _, fn := range w.removedListeners {
			fn(handle)
		}
	}
	if len(removed) > 0 {
		log.Printf("[ActorWorld] Removed %d actors, %d alive", len(removed), w.CountLiveActors())
	}
	return len(removed)
}

// Actor 查询敌人数据
func (w *ActorWorld) Actor(handle types.ActorHandle) (ActorSnapshot, bool) {
	id := ecs.EntityID(handle)
	actor, ok := ecs.GetComponent[*components.ActorComponent](w.em, id)
	if !ok || w.em.IsMarkedForDestroy(id) {
		return ActorSnapshot{}, false
	}
	return w.snapshot(id, actor), true
}

// Actors 所有存活敌人的快照，按句柄升序
func (w *ActorWorld) Actors() []ActorSnapshot {
	ids := ecs.GetEntitiesWith1[*components.ActorComponent](w.em)
	result := make([]ActorSnapshot, 0, len(ids))
	for _, id := range ids {
		if w.em.IsMarkedForDestroy(id) {
			continue
		}
		actor, _ := ecs.GetComponent[*components.ActorComponent](w.em, id)
		result = append(result, w.snapshot(id, actor))
	}
	return result
}

// Elapsed 世界时间（秒）
func (w *ActorWorld) Elapsed() float64 {
	return w.elapsed
}

func (w *ActorWorld) snapshot(id ecs.EntityID, actor *components.ActorComponent) ActorSnapshot {
	s := ActorSnapshot{
		Handle:   types.ActorHandle(id),
		Kind:     actor.Kind,
		Position: actor.Position,
	}
	if lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](w.em, id); ok {
		s.Remaining = lifetime.Remaining()
	}
	return s
}

func (w *ActorWorld) rollLifetime() float64 {
	if w.maxLifetime <= w.minLifetime {
		return w.minLifetime
	}
	return w.minLifetime + w.rng.Float64()*(w.maxLifetime-w.minLifetime)
}
