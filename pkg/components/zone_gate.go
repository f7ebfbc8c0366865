package components

import "github.com/gonewx/wavesurvival/pkg/types"

// ZoneGateComponent 区域边界门组件
// 每个外围区域（北/东/南/西）对应一扇门，中心区没有门
// 注意：遵循 ECS 原则，组件仅存储数据，状态只由 GateController 修改
type ZoneGateComponent struct {
	// Zone 所属区域（创建后不变）
	Zone types.Zone

	// Name 门名称，如 "NorthGate"
	Name string

	// IsOpen 是否打开
	IsOpen bool

	// Destructible 是否可被破坏
	// false: 忽略所有伤害
	Destructible bool

	// Health 当前耐久（仅可破坏门有效）
	Health float64

	// MaxHealth 最大耐久
	MaxHealth float64

	// Destroyed 是否已被摧毁
	// 摧毁意味着"被强制打开"，门实体本身不会被移除
	Destroyed bool
}
