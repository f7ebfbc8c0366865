// Package event 提供波次编排的通知分发
//
// 所有通知都是"发出即忘"：允许多个订阅者，不需要确认。
// 分发按订阅顺序同步执行，与游戏主循环在同一个 tick 内完成。
package event

import (
	"github.com/gonewx/wavesurvival/pkg/types"
)

// Type 事件类型
type Type int

const (
	// WaveStarted 波次开始（WaveNumber）
	WaveStarted Type = iota
	// WaveCompleted 波次完成（WaveNumber），奖励等外部系统在此订阅
	WaveCompleted
	// WaveStateChanged 状态变化（State, WaveNumber）
	WaveStateChanged
	// ActiveZonesChanged 本波激活区域变化（Zones, WaveNumber）
	ActiveZonesChanged
	// GateOpened 门被打开（Zone）
	GateOpened
	// GateClosed 门被关闭（Zone）
	GateClosed
	// GateDestroyed 门被摧毁（Zone），额外于 GateOpened 发出
	GateDestroyed
)

var typeNames = map[Type]string{
	WaveStarted:        "WaveStarted",
	WaveCompleted:      "WaveCompleted",
	WaveStateChanged:   "WaveStateChanged",
	ActiveZonesChanged: "ActiveZonesChanged",
	GateOpened:         "GateOpened",
	GateClosed:         "GateClosed",
	GateDestroyed:      "GateDestroyed",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Event 事件数据
// 未使用的字段保持零值
type Event struct {
	Type       Type
	WaveNumber int
	State      types.WaveState
	Zones      []types.Zone
	Zone       types.Zone
}

// Listener 订阅者接口
type Listener interface {
	OnEvent(e Event)
}

// ListenerFunc 函数适配器
type ListenerFunc func(e Event)

// OnEvent 调用函数本身
func (f ListenerFunc) OnEvent(e Event) {
	f(e)
}

// SubscriptionID 订阅标识，用于取消订阅
type SubscriptionID uint64

type subscription struct {
	id       SubscriptionID
	listener Listener
}

// Dispatcher 事件分发器
type Dispatcher struct {
	nextID    SubscriptionID
	listeners map[Type][]subscription
}

// NewDispatcher 创建分发器
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		nextID:    1,
		listeners: make(map[Type][]subscription),
	}
}

// Subscribe 订阅指定类型的事件
func (d *Dispatcher) Subscribe(eventType Type, listener Listener) SubscriptionID {
	id := d.nextID
	d.nextID++
	d.listeners[eventType] = append(d.listeners[eventType], subscription{id: id, listener: listener})
	return id
}

// SubscribeFunc 以函数形式订阅
func (d *Dispatcher) SubscribeFunc(eventType Type, fn func(e Event)) SubscriptionID {
	return d.Subscribe(eventType, ListenerFunc(fn))
}

// Unsubscribe 取消订阅；未知 ID 直接忽略
func (d *Dispatcher) Unsubscribe(id SubscriptionID) {
	for eventType, subs := range d.listeners {
		for i, sub := range subs {
			if sub.id == id {
				d.listeners[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Dispatch 将事件同步分发给所有订阅者
// 分发期间新增或取消的订阅不影响本次分发
func (d *Dispatcher) Dispatch(e Event) {
	subs := d.listeners[e.Type]
	if len(subs) == 0 {
		return
	}
	snapshot := make([]subscription, len(subs))
	copy(snapshot, subs)
	for _, sub := range snapshot {
		sub.listener.OnEvent(e)
	}
}

// ListenerCount 指定类型的订阅者数量
func (d *Dispatcher) ListenerCount(eventType Type) int {
	return len(d.listeners[eventType])
}
