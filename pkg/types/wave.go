package types

import (
	"fmt"
	"math"
	"strings"
)

// Phase 难度阶段（跨越一段波次范围）
type Phase int

const (
	// PhaseLearning 学习阶段：单区域
	PhaseLearning Phase = iota
	// PhaseCombination 组合阶段：两区域组合
	PhaseCombination
	// PhaseInverted 反转阶段：三个区域（排除一个）
	PhaseInverted
	// PhaseFinal 最终阶段：全部四个外围区域
	PhaseFinal
	// PhaseBoss Boss 波次
	PhaseBoss
)

// AllPhases 全部阶段
var AllPhases = []Phase{PhaseLearning, PhaseCombination, PhaseInverted, PhaseFinal, PhaseBoss}

var phaseNames = map[Phase]string{
	PhaseLearning:    "learning",
	PhaseCombination: "combination",
	PhaseInverted:    "inverted",
	PhaseFinal:       "final",
	PhaseBoss:        "boss",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Title 首字母大写的阶段名（用于描述文本）
func (p Phase) Title() string {
	name := p.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// ParsePhase 从字符串解析阶段（大小写不敏感）
func ParsePhase(s string) (Phase, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for phase, name := range phaseNames {
		if name == key {
			return phase, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// WaveState 波次生命周期状态
//
// 状态流转：Idle → Preparing → Active → (Cleanup) → Complete → Transition → Preparing ...
// 任意时刻只有一个状态有效，由 WaveOrchestrator 独占
type WaveState int

const (
	// WaveStateIdle 尚未开始或已被 StopWave 停止
	WaveStateIdle WaveState = iota
	// WaveStatePreparing 准备中：解析配置、开门、启动生成任务
	WaveStatePreparing
	// WaveStateActive 生成中
	WaveStateActive
	// WaveStateCleanup 生成已结束，等待剩余敌人被清除
	WaveStateCleanup
	// WaveStateComplete 本波完成
	WaveStateComplete
	// WaveStateTransition 波间等待
	WaveStateTransition
)

var waveStateNames = map[WaveState]string{
	WaveStateIdle:       "Idle",
	WaveStatePreparing:  "Preparing",
	WaveStateActive:     "Active",
	WaveStateCleanup:    "Cleanup",
	WaveStateComplete:   "Complete",
	WaveStateTransition: "Transition",
}

func (s WaveState) String() string {
	if name, ok := waveStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("WaveState(%d)", int(s))
}

// ActorKind 敌人类型标识（如 "grunt"、"brute"）
type ActorKind string

// ActorHandle 已生成敌人的句柄
// 编排核心只知道句柄存在，不关心渲染与行为
type ActorHandle uint64

// Position 世界坐标（仅用于距离排序与生成位置）
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// DistanceTo 两点间欧氏距离
func (p Position) DistanceTo(other Position) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}
