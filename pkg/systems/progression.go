package systems

import (
	"fmt"

	"github.com/gonewx/wavesurvival/pkg/types"
)

// 波次进程常量
const (
	// FinalPhaseStart 最终阶段起始波次
	FinalPhaseStart = 18

	// BossInterval 最终阶段 Boss 波的间隔
	// 第 FinalPhaseStart + k*BossInterval + (BossInterval-1) 波为 Boss 波
	BossInterval = 5
)

// fixedBossWaves 最终阶段之前的固定 Boss 波次
var fixedBossWaves = map[int]bool{7: true, 12: true, 17: true}

// eraRanges 最终阶段之前各阶段的波次范围（含首尾）
var eraRanges = []struct {
	phase       types.Phase
	first, last int
}{
	{types.PhaseLearning, 1, 7},
	{types.PhaseCombination, 8, 12},
	{types.PhaseInverted, 13, FinalPhaseStart - 1},
}

// nonBossWaveCount 统计 [first, last] 内的非 Boss 波数量，O(1)
func nonBossWaveCount(first, last int) int {
	if first < 1 {
		first = 1
	}
	if last < first {
		return 0
	}
	count := last - first + 1

	// 最终阶段之前：只有固定 Boss 波
	for wave := range fixedBossWaves {
		if wave >= first && wave <= last {
			count--
		}
	}

	// 最终阶段：[FinalPhaseStart, x] 内共有 (x-FinalPhaseStart+1)/BossInterval 个 Boss 波
	if last >= FinalPhaseStart {
		bossesThrough := func(x int) int {
			if x < FinalPhaseStart {
				return 0
			}
			return (x - FinalPhaseStart + 1) / BossInterval
		}
		count -= bossesThrough(last) - bossesThrough(first-1)
	}
	return count
}

// 各阶段的固定区域映射
var (
	learningZones = map[int][]types.Zone{
		3: {types.ZoneNorth},
		4: {types.ZoneWest},
		5: {types.ZoneSouth},
		6: {types.ZoneEast},
	}
	combinationZones = map[int][]types.Zone{
		8:  {types.ZoneNorth, types.ZoneWest},
		9:  {types.ZoneSouth, types.ZoneEast},
		10: {types.ZoneNorth, types.ZoneEast},
		11: {types.ZoneWest, types.ZoneSouth},
	}
	// invertedExcluded 反转阶段中被排除的区域
	invertedExcluded = map[int]types.Zone{
		13: types.ZoneNorth,
		14: types.ZoneEast,
		15: types.ZoneSouth,
		16: types.ZoneWest,
	}
)

// WaveProgression 某一波的进程信息
// 每次都由波次号重新计算，不可变，不跨波次缓存
type WaveProgression struct {
	WaveNumber int
	Phase      types.Phase
	// EraPhase 波次所在的非 Boss 阶段
	// Boss 波用它决定每波增量和间隔递减；非 Boss 波与 Phase 相同
	EraPhase    types.Phase
	ActiveZones []types.Zone
	IsBossWave  bool
	Description string
}

// HasZone 本波是否激活了指定区域
func (p WaveProgression) HasZone(zone types.Zone) bool {
	return types.ContainsZone(p.ActiveZones, zone)
}

// ProgressionResolver 进程解析器
//
// 职责：
//   - 由波次号确定阶段、激活区域和是否为 Boss 波
//
// 纯函数：没有随机数，没有隐藏状态，同一波次号永远得到同样的结果，
// 这样重新加载或重放某一波时可以完全复现
type ProgressionResolver struct{}

// NewProgressionResolver 创建进程解析器
func NewProgressionResolver() *ProgressionResolver {
	return &ProgressionResolver{}
}

// IsBossWave 判断波次是否为 Boss 波
func IsBossWave(waveNumber int) bool {
	if fixedBossWaves[waveNumber] {
		return true
	}
	if waveNumber >= FinalPhaseStart {
		return (waveNumber-FinalPhaseStart)%BossInterval == BossInterval-1
	}
	return false
}

// EraPhaseOf 返回波次所在的非 Boss 阶段
func EraPhaseOf(waveNumber int) types.Phase {
	switch {
	case waveNumber <= 7:
		return types.PhaseLearning
	case waveNumber <= 12:
		return types.PhaseCombination
	case waveNumber < FinalPhaseStart:
		return types.PhaseInverted
	default:
		return types.PhaseFinal
	}
}

// Resolve 计算指定波次的进程
// waveNumber < 1 按第 1 波处理（调用方负责拒绝非法输入）
func (r *ProgressionResolver) Resolve(waveNumber int) WaveProgression {
	if waveNumber < 1 {
		waveNumber = 1
	}

	era := EraPhaseOf(waveNumber)
	progression := WaveProgression{
		WaveNumber: waveNumber,
		Phase:      era,
		EraPhase:   era,
	}

	if IsBossWave(waveNumber) {
		progression.Phase = types.PhaseBoss
		progression.IsBossWave = true
		progression.ActiveZones = bossZones(waveNumber)
		progression.Description = fmt.Sprintf("Wave %d - Boss: %s", waveNumber, describeZones(progression.ActiveZones))
		return progression
	}

	switch era {
	case types.PhaseLearning:
		if zones, ok := learningZones[waveNumber]; ok {
			progression.ActiveZones = types.SortZones(zones)
		} else {
			progression.ActiveZones = []types.Zone{types.ZoneCenter}
		}
	case types.PhaseCombination:
		progression.ActiveZones = types.SortZones(combinationZones[waveNumber])
	case types.PhaseInverted:
		excluded := invertedExcluded[waveNumber]
		zones := make([]types.Zone, 0, 3)
		for _, z := range types.OuterZones {
			if z != excluded {
				zones = append(zones, z)
			}
		}
		progression.ActiveZones = zones
	default:
		progression.ActiveZones = allOuterZones()
	}

	progression.Description = fmt.Sprintf("Wave %d - %s: %s", waveNumber, era.Title(), describeZones(progression.ActiveZones))
	return progression
}

// bossZones Boss 波的区域
// 第 7、17 波只开中心区；第 12 波与最终阶段 Boss 波开全部四个外围区域
func bossZones(waveNumber int) []types.Zone {
	if waveNumber == 7 || waveNumber == 17 {
		return []types.Zone{types.ZoneCenter}
	}
	return allOuterZones()
}

func allOuterZones() []types.Zone {
	zones := make([]types.Zone, len(types.OuterZones))
	copy(zones, types.OuterZones)
	return zones
}

func describeZones(zones []types.Zone) string {
	if len(zones) == len(types.OuterZones) && !types.ContainsZone(zones, types.ZoneCenter) {
		return "all gates"
	}
	return types.FormatZones(zones)
}
