package components

import "github.com/gonewx/wavesurvival/pkg/types"

// ActorComponent 已生成敌人的数据
// 由 ActorWorld 创建；编排核心只持有句柄
type ActorComponent struct {
	Kind     types.ActorKind
	Position types.Position
	// SpawnedAt 生成时的世界时间（秒）
	SpawnedAt float64
}
