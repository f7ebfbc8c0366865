package systems

import (
	"math"
	"sort"

	"github.com/gonewx/wavesurvival/pkg/types"
)

// SpawnAssignment 一个生成点在本波的分配
type SpawnAssignment struct {
	Point        SpawnPoint
	StaggerIndex int // 区域内按距离排序的序号
	TargetCount  int
}

// SelectSpawnPoints 选出区域内距中心最近的 count 个生成点
// 距离相同时保持输入顺序
func SelectSpawnPoints(points []SpawnPoint, zone types.Zone, center types.Position, count int) []SpawnPoint {
	candidates := make([]SpawnPoint, 0)
	for _, p := range points {
		if p.Zone == zone {
			candidates = append(candidates, p)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Position.DistanceTo(center) < candidates[j].Position.DistanceTo(center)
	})

	if count < 0 {
		count = 0
	}
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates
}

// PlanSpawnAssignments 为本波的激活区域规划生成点与各自的目标数量
//
// 每个区域取 spawnerCount 个生成点；总目标数在所有选中的生成点间平均分配并向上取整。
// 没有生成点的区域被跳过（返回在 emptyZones 中），不阻塞波次完成
func PlanSpawnAssignments(points []SpawnPoint, zones []types.Zone, center types.Position, spawnerCount, targetCount int) (assignments []SpawnAssignment, emptyZones []types.Zone) {
	selected := make([][]SpawnPoint, 0, len(zones))
	total := 0
	for _, zone := range zones {
		chosen := SelectSpawnPoints(points, zone, center, spawnerCount)
		if len(chosen) == 0 {
			emptyZones = append(emptyZones, zone)
			continue
		}
		selected = append(selected, chosen)
		total += len(chosen)
	}
	if total == 0 {
		return nil, emptyZones
	}

	perPoint := 0
	if targetCount > 0 {
		perPoint = int(math.Ceil(float64(targetCount) / float64(total)))
	}

	assignments = make([]SpawnAssignment, 0, total)
	for _, chosen := range selected {
		for i, p := range chosen {
			assignments = append(assignments, SpawnAssignment{
				Point:        p,
				StaggerIndex: i,
				TargetCount:  perPoint,
			})
		}
	}
	return assignments, emptyZones
}
