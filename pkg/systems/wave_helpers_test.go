package systems

import (
	"errors"

	"github.com/gonewx/wavesurvival/pkg/event"
	"github.com/gonewx/wavesurvival/pkg/types"
)

// stubProducer 记录所有生成请求的假生成器
type stubProducer struct {
	next     types.ActorHandle
	produced []stubActor
	fail     bool
}

type stubActor struct {
	handle types.ActorHandle
	kind   types.ActorKind
	at     types.Position
}

func (p *stubProducer) Produce(kind types.ActorKind, at types.Position) (types.ActorHandle, error) {
	if p.fail {
		return 0, errors.New("producer offline")
	}
	p.next++
	p.produced = append(p.produced, stubActor{handle: p.next, kind: kind, at: at})
	return p.next, nil
}

// stubCounter 权威存活数量
type stubCounter struct {
	count int
}

func (c *stubCounter) CountLiveActors() int { return c.count }

// taskRecorder 记录 SpawnTask 回调
type taskRecorder struct {
	produced  []types.ActorHandle
	kinds     []types.ActorKind
	completed int
	onProduce func(task *SpawnTask)
}

func (r *taskRecorder) OnActorProduced(task *SpawnTask, handle types.ActorHandle, kind types.ActorKind) {
	r.produced = append(r.produced, handle)
	r.kinds = append(r.kinds, kind)
	if r.onProduce != nil {
		r.onProduce(task)
	}
}

func (r *taskRecorder) OnSpawnTaskCompleted(task *SpawnTask) {
	r.completed++
}

// eventLog 订阅所有事件类型并按顺序记录
type eventLog struct {
	events []event.Event
}

func newEventLog(d *event.Dispatcher) *eventLog {
	l := &eventLog{}
	for _, eventType := range []event.Type{
		event.WaveStarted, event.WaveCompleted, event.WaveStateChanged, event.ActiveZonesChanged,
		event.GateOpened, event.GateClosed, event.GateDestroyed,
	} {
		d.SubscribeFunc(eventType, func(e event.Event) {
			l.events = append(l.events, e)
		})
	}
	return l
}

func (l *eventLog) ofType(eventType event.Type) []event.Event {
	result := make([]event.Event, 0)
	for _, e := range l.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

func (l *eventLog) types() []event.Type {
	result := make([]event.Type, 0, len(l.events))
	for _, e := range l.events {
		result = append(result, e.Type)
	}
	return result
}

func (l *eventLog) reset() {
	l.events = nil
}
