package components

// LifetimeComponent 管理实体的生命周期
// 模拟敌人被击败：存在时间达到上限后实体被移除
type LifetimeComponent struct {
	MaxLifetime     float64 // 最大生命周期(秒)
	CurrentLifetime float64 // 当前已存在时间(秒)
	IsExpired       bool    // 是否已过期
}

// Remaining 剩余时间(秒)，不小于 0
func (l *LifetimeComponent) Remaining() float64 {
	if l.CurrentLifetime >= l.MaxLifetime {
		return 0
	}
	return l.MaxLifetime - l.CurrentLifetime
}
