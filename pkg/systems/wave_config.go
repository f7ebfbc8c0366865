package systems

import (
	"math"

	"github.com/gonewx/wavesurvival/pkg/config"
	"github.com/gonewx/wavesurvival/pkg/types"
)

// WaveConfig 由进程和调参推导出的波次数值参数
type WaveConfig struct {
	WaveNumber    int
	ActorRoster   []types.ActorKind // 按权重展开的花名册，均匀抽取即为加权抽取
	TargetCount   int               // 本波总生成数量
	SpawnInterval float64           // 生成间隔（秒）
}

// WaveConfigGenerator 波次参数生成器
// 与 ProgressionResolver 一样是确定性的：同样的输入得到同样的结果
type WaveConfigGenerator struct {
	tunables *config.WaveTunables
	resolver *ProgressionResolver
}

// NewWaveConfigGenerator 创建波次参数生成器
// tunables 为 nil 时使用内置默认调参
func NewWaveConfigGenerator(tunables *config.WaveTunables, resolver *ProgressionResolver) *WaveConfigGenerator {
	if tunables == nil {
		tunables = config.DefaultWaveTunables()
	}
	if resolver == nil {
		resolver = NewProgressionResolver()
	}
	return &WaveConfigGenerator{
		tunables: tunables,
		resolver: resolver,
	}
}

// Tunables 返回当前使用的调参
func (g *WaveConfigGenerator) Tunables() *config.WaveTunables {
	return g.tunables
}

// GenerateConfig 计算指定波次的数值参数
func (g *WaveConfigGenerator) GenerateConfig(waveNumber int, progression WaveProgression) WaveConfig {
	return WaveConfig{
		WaveNumber:    waveNumber,
		ActorRoster:   g.BuildRoster(waveNumber, progression.Phase),
		TargetCount:   g.TargetCount(waveNumber, progression),
		SpawnInterval: g.SpawnInterval(waveNumber, progression),
	}
}

// ConfigFor 解析进程并生成参数（便捷方法）
func (g *WaveConfigGenerator) ConfigFor(waveNumber int) (WaveProgression, WaveConfig) {
	progression := g.resolver.Resolve(waveNumber)
	return progression, g.GenerateConfig(progression.WaveNumber, progression)
}

// TargetCount 计算本波总数量
//
// 非 Boss 波：1..waveNumber 中所有非 Boss 波次所在阶段的每波增量之和 × 数量系数，
// 最终阶段再乘以 scaling^(waveNumber - FinalPhaseStart)
//
// Boss 波：3 × 所在阶段增量 × Boss 系数，最终阶段 Boss 波再乘以半速率的指数项
func (g *WaveConfigGenerator) TargetCount(waveNumber int, progression WaveProgression) int {
	d := g.tunables.Difficulty
	var count float64

	if progression.IsBossWave {
		increment := float64(g.tunables.PhaseTunable(progression.EraPhase).WaveIncrement)
		count = 3 * increment * d.BossModifier
		if waveNumber >= FinalPhaseStart {
			count *= math.Pow(d.FinalPhaseScalingModifier, float64(waveNumber-FinalPhaseStart)/2)
		}
	} else {
		sum := 0.0
		for _, era := range eraRanges {
			waves := nonBossWaveCount(era.first, min(era.last, waveNumber))
			sum += float64(g.tunables.PhaseTunable(era.phase).WaveIncrement * waves)
		}
		if waveNumber >= FinalPhaseStart {
			waves := nonBossWaveCount(FinalPhaseStart, waveNumber)
			sum += float64(g.tunables.PhaseTunable(types.PhaseFinal).WaveIncrement) * float64(waves)
		}
		count = sum * d.CountModifier
		if waveNumber >= FinalPhaseStart {
			count *= math.Pow(d.FinalPhaseScalingModifier, float64(waveNumber-FinalPhaseStart))
		}
	}

	if math.IsNaN(count) || count < 0 {
		return 0
	}
	if count > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(count))
}

// SpawnInterval 计算生成间隔
//
// (基础间隔 - 递减速率 × 波次号) / (速度系数 × [Boss系数] × [最终阶段指数项 70% 速率])
// 结果不低于 MinSpawnInterval，生成节奏永远不会为 0 或负数
func (g *WaveConfigGenerator) SpawnInterval(waveNumber int, progression WaveProgression) float64 {
	d := g.tunables.Difficulty
	floor := g.tunables.Timing.MinSpawnInterval
	if floor <= 0 {
		floor = config.DefaultMinSpawnInterval
	}

	pt := g.tunables.PhaseTunable(progression.EraPhase)
	interval := pt.BaseInterval - pt.Decay()*float64(waveNumber)

	divisor := d.SpeedModifier
	if progression.IsBossWave {
		divisor *= d.BossModifier
	}
	if waveNumber >= FinalPhaseStart {
		divisor *= math.Pow(d.FinalPhaseScalingModifier, 0.7*float64(waveNumber-FinalPhaseStart))
	}

	if divisor <= 0 || math.IsNaN(divisor) || math.IsInf(divisor, 0) {
		return floor
	}
	interval /= divisor

	if math.IsNaN(interval) || interval < floor {
		return floor
	}
	return interval
}

// BuildRoster 构建花名册
// 按配置顺序遍历已解锁（unlockWave <= waveNumber）的类型，每种类型追加其在本阶段的权重份数；
// 权重为 0 的类型即使已解锁也不会出现
func (g *WaveConfigGenerator) BuildRoster(waveNumber int, phase types.Phase) []types.ActorKind {
	roster := make([]types.ActorKind, 0)
	for _, actor := range g.tunables.Actors {
		if actor.UnlockWave > waveNumber {
			continue
		}
		weight := actor.Weight(phase)
		for i := 0; i < weight; i++ {
			roster = append(roster, types.ActorKind(actor.Kind))
		}
	}
	return roster
}

// SpawnerCount 指定阶段每个激活区域使用的生成点数量
func (g *WaveConfigGenerator) SpawnerCount(phase types.Phase) int {
	count := g.tunables.PhaseTunable(phase).SpawnerCount
	if count < 1 {
		return config.DefaultSpawnerCount
	}
	return count
}
