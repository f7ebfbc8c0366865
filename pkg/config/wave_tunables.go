package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gonewx/wavesurvival/pkg/types"
)

// WaveTunables 波次难度调参配置
// 定义了全局难度系数、各阶段参数和敌人类型解锁/权重表
type WaveTunables struct {
	Difficulty DifficultyModifiers     `yaml:"difficulty"` // 全局难度系数
	Timing     TimingConfig            `yaml:"timing"`     // 计时参数
	Phases     map[string]PhaseTunable `yaml:"phases"`     // 阶段名 -> 阶段参数
	Actors     []ActorKindConfig       `yaml:"actors"`     // 敌人类型列表（顺序即花名册顺序）
}

// DifficultyModifiers 全局难度系数
type DifficultyModifiers struct {
	CountModifier             float64 `yaml:"countModifier"`             // 数量系数，默认 1.0
	SpeedModifier             float64 `yaml:"speedModifier"`             // 生成速度系数，默认 1.0
	BossModifier              float64 `yaml:"bossModifier"`              // Boss 波系数，默认 1.5
	FinalPhaseScalingModifier float64 `yaml:"finalPhaseScalingModifier"` // 最终阶段指数底数，默认 1.1
}

// TimingConfig 计时参数（秒）
type TimingConfig struct {
	MinSpawnInterval  float64 `yaml:"minSpawnInterval"`  // 生成间隔下限，默认 0.05
	DelayBetweenWaves float64 `yaml:"delayBetweenWaves"` // 波间等待，默认 5
	ReconcileInterval float64 `yaml:"reconcileInterval"` // 存活数校正周期，默认 2
}

// PhaseTunable 单个阶段的参数
type PhaseTunable struct {
	WaveIncrement int     `yaml:"waveIncrement"` // 每波累加的敌人数量
	SpawnerCount  int     `yaml:"spawnerCount"`  // 每个激活区域使用的生成点数量，默认 1
	BaseInterval  float64 `yaml:"baseInterval"`  // 基础生成间隔（秒）
	IntervalDecay *float64 `yaml:"intervalDecay,omitempty"` // 每波递减的间隔（秒/波），nil 表示未配置，0 是合法值
}

// Decay 每波递减的间隔，未配置时为 0
func (p PhaseTunable) Decay() float64 {
	if p.IntervalDecay == nil {
		return 0
	}
	return *p.IntervalDecay
}

// clone 复制阶段参数，避免共享 IntervalDecay 指针
func (p PhaseTunable) clone() PhaseTunable {
	if p.IntervalDecay != nil {
		decay := *p.IntervalDecay
		p.IntervalDecay = &decay
	}
	return p
}

func float64Ptr(v float64) *float64 {
	return &v
}

// ActorKindConfig 敌人类型配置
type ActorKindConfig struct {
	Kind       string         `yaml:"kind"`       // 类型标识，如 "grunt"
	UnlockWave int            `yaml:"unlockWave"` // 解锁波次（>=1）
	Weights    map[string]int `yaml:"weights"`    // 阶段名 -> 花名册中的份数，缺省为 0
}

// 默认值
const (
	DefaultCountModifier             = 1.0
	DefaultSpeedModifier             = 1.0
	DefaultBossModifier              = 1.5
	DefaultFinalPhaseScalingModifier = 1.1
	DefaultMinSpawnInterval          = 0.05
	DefaultDelayBetweenWaves         = 5.0
	DefaultReconcileInterval         = 2.0
	DefaultSpawnerCount              = 1
)

// defaultPhaseTunables 各阶段默认参数
// 学习阶段使用独立的基础间隔和递减速率，之后的阶段共用另一组
var defaultPhaseTunables = map[types.Phase]PhaseTunable{
	types.PhaseLearning:    {WaveIncrement: 4, SpawnerCount: 1, BaseInterval: 0.62, IntervalDecay: float64Ptr(0.02)},
	types.PhaseCombination: {WaveIncrement: 3, SpawnerCount: 1, BaseInterval: 0.55, IntervalDecay: float64Ptr(0.03)},
	types.PhaseInverted:    {WaveIncrement: 3, SpawnerCount: 1, BaseInterval: 0.55, IntervalDecay: float64Ptr(0.03)},
	types.PhaseFinal:       {WaveIncrement: 2, SpawnerCount: 2, BaseInterval: 0.55, IntervalDecay: float64Ptr(0.03)},
	types.PhaseBoss:        {WaveIncrement: 0, SpawnerCount: 2, BaseInterval: 0.55, IntervalDecay: float64Ptr(0.03)},
}

// DefaultWaveTunables 返回内置的默认调参
func DefaultWaveTunables() *WaveTunables {
	tunables := &WaveTunables{
		Actors: []ActorKindConfig{
			{Kind: "grunt", UnlockWave: 1, Weights: map[string]int{"learning": 4, "combination": 3, "inverted": 2, "final": 2, "boss": 2}},
			{Kind: "runner", UnlockWave: 3, Weights: map[string]int{"learning": 1, "combination": 2, "inverted": 2, "final": 2, "boss": 1}},
			{Kind: "warlord", UnlockWave: 7, Weights: map[string]int{"boss": 1}},
			{Kind: "brute", UnlockWave: 8, Weights: map[string]int{"combination": 1, "inverted": 2, "final": 2, "boss": 1}},
			{Kind: "spitter", UnlockWave: 13, Weights: map[string]int{"inverted": 1, "final": 2, "boss": 1}},
		},
	}
	applyTunableDefaults(tunables)
	return tunables
}

// LoadWaveTunables 从YAML文件加载波次调参
func LoadWaveTunables(filePath string) (*WaveTunables, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read wave tunables file %s: %w", filePath, err)
	}

	tunables, err := ParseWaveTunables(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return tunables, nil
}

// ParseWaveTunables 解析YAML数据并应用默认值、校验
func ParseWaveTunables(data []byte) (*WaveTunables, error) {
	var tunables WaveTunables
	if err := yaml.Unmarshal(data, &tunables); err != nil {
		return nil, fmt.Errorf("failed to parse wave tunables YAML: %w", err)
	}

	applyTunableDefaults(&tunables)

	if err := validateWaveTunables(&tunables); err != nil {
		return nil, fmt.Errorf("invalid wave tunables: %w", err)
	}

	return &tunables, nil
}

// applyTunableDefaults 为缺失的可选字段设置默认值
// 数值字段的零值视为"未配置"
func applyTunableDefaults(t *WaveTunables) {
	if t.Difficulty.CountModifier == 0 {
		t.Difficulty.CountModifier = DefaultCountModifier
	}
	if t.Difficulty.SpeedModifier == 0 {
		t.Difficulty.SpeedModifier = DefaultSpeedModifier
	}
	if t.Difficulty.BossModifier == 0 {
		t.Difficulty.BossModifier = DefaultBossModifier
	}
	if t.Difficulty.FinalPhaseScalingModifier == 0 {
		t.Difficulty.FinalPhaseScalingModifier = DefaultFinalPhaseScalingModifier
	}

	if t.Timing.MinSpawnInterval == 0 {
		t.Timing.MinSpawnInterval = DefaultMinSpawnInterval
	}
	if t.Timing.DelayBetweenWaves == 0 {
		t.Timing.DelayBetweenWaves = DefaultDelayBetweenWaves
	}
	if t.Timing.ReconcileInterval == 0 {
		t.Timing.ReconcileInterval = DefaultReconcileInterval
	}

	if t.Phases == nil {
		t.Phases = make(map[string]PhaseTunable)
	}
	for _, phase := range types.AllPhases {
		def := defaultPhaseTunables[phase]
		pt, ok := t.Phases[phase.String()]
		if !ok {
			t.Phases[phase.String()] = def.clone()
			continue
		}
		if pt.SpawnerCount == 0 {
			pt.SpawnerCount = def.SpawnerCount
		}
		if pt.BaseInterval == 0 {
			pt.BaseInterval = def.BaseInterval
		}
		if pt.IntervalDecay == nil {
			pt.IntervalDecay = float64Ptr(def.Decay())
		}
		t.Phases[phase.String()] = pt
	}
}

// validateWaveTunables 验证调参的完整性和合法性
func validateWaveTunables(t *WaveTunables) error {
	d := t.Difficulty
	if d.CountModifier < 0 {
		return fmt.Errorf("difficulty.countModifier cannot be negative, got %v", d.CountModifier)
	}
	if d.SpeedModifier <= 0 {
		return fmt.Errorf("difficulty.speedModifier must be positive, got %v", d.SpeedModifier)
	}
	if d.BossModifier <= 0 {
		return fmt.Errorf("difficulty.bossModifier must be positive, got %v", d.BossModifier)
	}
	if d.FinalPhaseScalingModifier <= 0 {
		return fmt.Errorf("difficulty.finalPhaseScalingModifier must be positive, got %v", d.FinalPhaseScalingModifier)
	}

	if t.Timing.MinSpawnInterval <= 0 {
		return fmt.Errorf("timing.minSpawnInterval must be positive, got %v", t.Timing.MinSpawnInterval)
	}
	if t.Timing.DelayBetweenWaves < 0 {
		return fmt.Errorf("timing.delayBetweenWaves cannot be negative, got %v", t.Timing.DelayBetweenWaves)
	}
	if t.Timing.ReconcileInterval <= 0 {
		return fmt.Errorf("timing.reconcileInterval must be positive, got %v", t.Timing.ReconcileInterval)
	}

	for name, pt := range t.Phases {
		if _, err := types.ParsePhase(name); err != nil {
			return fmt.Errorf("phases: %w", err)
		}
		if pt.WaveIncrement < 0 {
			return fmt.Errorf("phase %s: waveIncrement cannot be negative, got %d", name, pt.WaveIncrement)
		}
		if pt.SpawnerCount < 1 {
			return fmt.Errorf("phase %s: spawnerCount must be at least 1, got %d", name, pt.SpawnerCount)
		}
		if pt.BaseInterval < 0 {
			return fmt.Errorf("phase %s: baseInterval cannot be negative, got %v", name, pt.BaseInterval)
		}
	}

	seen := make(map[string]bool, len(t.Actors))
	for i, actor := range t.Actors {
		if actor.Kind == "" {
			return fmt.Errorf("actors[%d]: kind is required", i)
		}
		if seen[actor.Kind] {
			return fmt.Errorf("actors[%d]: duplicate kind %q", i, actor.Kind)
		}
		seen[actor.Kind] = true

		if actor.UnlockWave < 1 {
			return fmt.Errorf("actor %s: unlockWave must be at least 1, got %d", actor.Kind, actor.UnlockWave)
		}
		for phaseName, weight := range actor.Weights {
			if _, err := types.ParsePhase(phaseName); err != nil {
				return fmt.Errorf("actor %s: %w", actor.Kind, err)
			}
			if weight < 0 {
				return fmt.Errorf("actor %s: weight for %s cannot be negative, got %d", actor.Kind, phaseName, weight)
			}
		}
	}

	return nil
}

// PhaseTunable 获取指定阶段的参数
// 未配置的阶段返回内置默认值
func (t *WaveTunables) PhaseTunable(phase types.Phase) PhaseTunable {
	if pt, ok := t.Phases[phase.String()]; ok {
		return pt
	}
	return defaultPhaseTunables[phase].clone()
}

// Weight 获取敌人类型在指定阶段的权重（份数）
func (a ActorKindConfig) Weight(phase types.Phase) int {
	return a.Weights[phase.String()]
}
