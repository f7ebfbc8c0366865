package systems

import (
	"errors"
	"fmt"
	"log"

	"github.com/gonewx/wavesurvival/pkg/components"
	"github.com/gonewx/wavesurvival/pkg/config"
	"github.com/gonewx/wavesurvival/pkg/event"
	"github.com/gonewx/wavesurvival/pkg/types"
)

var (
	// ErrUnknownZone 未定义的区域
	ErrUnknownZone = errors.New("unknown zone")
	// ErrZoneHasNoGate 中心区没有门
	ErrZoneHasNoGate = errors.New("zone has no gate")
	// ErrInvalidDamage 伤害值为负
	ErrInvalidDamage = errors.New("damage amount cannot be negative")
)

// GateController 区域门控制器
//
// 职责：
//   - 维护四个外围区域与四扇门的一一对应（中心区没有门，始终可进入）
//   - 响应编排器的激活区域通知：先关闭全部门，再打开本波选中区域的门
//   - 处理可破坏门的伤害，耐久归零时强制打开并发出摧毁通知
//
// 架构说明：
//   - 门状态只由本控制器修改，其他组件只能读取或发送命令
//   - 所有操作都是同步命令，没有挂起点
type GateController struct {
	gates      map[types.Zone]*components.ZoneGateComponent
	policy     string
	dispatcher *event.Dispatcher
}

// NewGateController 创建门控制器
//
// 参数：
//   - arena: 场地配置（门耐久、是否可破坏、摧毁策略），nil 时使用默认场地
//   - dispatcher: 事件分发器，可为 nil（不发通知）
//
// 所有门在创建时处于关闭状态
func NewGateController(arena *config.ArenaConfig, dispatcher *event.Dispatcher) *GateController {
	if arena == nil {
		arena = config.DefaultArenaConfig()
	}

	gc := &GateController{
		gates:      make(map[types.Zone]*components.ZoneGateComponent, len(types.OuterZones)),
		policy:     arena.DestroyedGatePolicy,
		dispatcher: dispatcher,
	}
	if gc.policy == "" {
		gc.policy = config.GatePolicyRepair
	}

	for _, zone := range types.OuterZones {
		gateCfg, ok := arena.GateFor(zone)
		if !ok {
			gateCfg = config.GateConfig{Zone: zone, MaxHealth: config.DefaultGateMaxHealth, Destructible: true}
		}
		gc.gates[zone] = &components.ZoneGateComponent{
			Zone:         zone,
			Name:         zone.GateName(),
			IsOpen:       false,
			Destructible: gateCfg.Destructible,
			Health:       gateCfg.MaxHealth,
			MaxHealth:    gateCfg.MaxHealth,
		}
	}

	return gc
}

// ApplyActiveZones 应用本波的激活区域
//
// 两阶段：先关闭所有门，再打开 zones 中每个外围区域的门（中心区条目被忽略）。
// 这保证了即使新集合是旧集合的子集，上一波的门也不会残留打开
func (gc *GateController) ApplyActiveZones(zones []types.Zone) {
	for _, zone := range types.OuterZones {
		gc.closeGate(gc.gates[zone])
	}

	for _, zone := range types.SortZones(zones) {
		if zone == types.ZoneCenter {
			continue
		}
		gate, ok := gc.gates[zone]
		if !ok {
			log.Printf("[GateController] Warning: ignoring unknown zone %d in active zones", int(zone))
			continue
		}
		gc.openGate(gate)
	}

	log.Printf("[GateController] Active zones applied: %s (open: %s)",
		types.FormatZones(zones), types.FormatZones(gc.OpenZones()))
}

// SetGate 直接设置门的开关
// 关闭被摧毁的门时遵循摧毁策略
func (gc *GateController) SetGate(zone types.Zone, open bool) error {
	gate, err := gc.lookup(zone)
	if err != nil {
		return err
	}
	if open {
		gc.openGate(gate)
	} else {
		gc.closeGate(gate)
	}
	return nil
}

// ApplyDamage 对可破坏的门造成伤害
// 耐久 <= 0 时强制打开，并在 GateOpened 之外额外发出 GateDestroyed
func (gc *GateController) ApplyDamage(zone types.Zone, amount float64) error {
	gate, err := gc.lookup(zone)
	if err != nil {
		return err
	}
	if amount < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDamage, amount)
	}
	if !gate.Destructible {
		log.Printf("[GateController] %s is not destructible, ignoring %.1f damage", gate.Name, amount)
		return nil
	}
	if gate.Destroyed {
		return nil
	}

	gate.Health -= amount
	if gate.Health > 0 {
		return nil
	}

	gate.Health = 0
	gate.Destroyed = true
	log.Printf("[GateController] %s destroyed", gate.Name)
	gc.openGate(gate)
	gc.dispatch(event.GateDestroyed, gate.Zone)
	return nil
}

// CloseAll 立即关闭所有门
func (gc *GateController) CloseAll() {
	for _, zone := range types.OuterZones {
		gc.closeGate(gc.gates[zone])
	}
}

// IsOpen 区域是否可进入（中心区始终可进入）
func (gc *GateController) IsOpen(zone types.Zone) bool {
	if zone == types.ZoneCenter {
		return true
	}
	gate, ok := gc.gates[zone]
	return ok && gate.IsOpen
}

// Gate 返回门状态的副本
func (gc *GateController) Gate(zone types.Zone) (components.ZoneGateComponent, bool) {
	gate, ok := gc.gates[zone]
	if !ok {
		return components.ZoneGateComponent{}, false
	}
	return *gate, true
}

// OpenZones 当前打开的外围区域
func (gc *GateController) OpenZones() []types.Zone {
	open := make([]types.Zone, 0, len(types.OuterZones))
	for _, zone := range types.OuterZones {
		if gc.gates[zone].IsOpen {
			open = append(open, zone)
		}
	}
	return open
}

// Policy 摧毁门的处理策略
func (gc *GateController) Policy() string {
	return gc.policy
}

func (gc *GateController) lookup(zone types.Zone) (*components.ZoneGateComponent, error) {
	if !zone.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownZone, int(zone))
	}
	gate, ok := gc.gates[zone]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrZoneHasNoGate, zone)
	}
	return gate, nil
}

func (gc *GateController) openGate(gate *components.ZoneGateComponent) {
	gate.IsOpen = true
	gc.dispatch(event.GateOpened, gate.Zone)
}

// closeGate 关闭门
// 被摧毁的门：repair 策略下修复并关闭，stayOpen 策略下保持打开
func (gc *GateController) closeGate(gate *components.ZoneGateComponent) {
	if gate.Destroyed {
		if gc.policy == config.GatePolicyStayOpen {
			return
		}
		gate.Destroyed = false
		gate.Health = gate.MaxHealth
		log.Printf("[GateController] %s repaired", gate.Name)
	}
	gate.IsOpen = false
	gc.dispatch(event.GateClosed, gate.Zone)
}

func (gc *GateController) dispatch(eventType event.Type, zone types.Zone) {
	if gc.dispatcher == nil {
		return
	}
	gc.dispatcher.Dispatch(event.Event{Type: eventType, Zone: zone})
}
