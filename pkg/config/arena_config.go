package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gonewx/wavesurvival/pkg/types"
)

// 被摧毁的门在后续 ApplyActiveZones 中的处理策略
const (
	// GatePolicyRepair 修复：之后的关闭命令会重新关门并恢复满耐久
	GatePolicyRepair = "repair"
	// GatePolicyStayOpen 保持打开：被摧毁的门永久打开
	GatePolicyStayOpen = "stayOpen"
)

// ArenaConfig 场地配置
// 定义中心参考点、各区域生成点、边界门以及模拟参数
type ArenaConfig struct {
	Center              types.Position     `yaml:"center"`              // 距离排序的参考中心
	SpawnPoints         []SpawnPointConfig `yaml:"spawnPoints"`         // 生成点列表（顺序即同距离时的排序依据）
	Gates               []GateConfig       `yaml:"gates"`               // 门配置，缺失的外围区域使用默认值
	DestroyedGatePolicy string             `yaml:"destroyedGatePolicy"` // "repair"（默认）或 "stayOpen"
	Simulation          SimulationConfig   `yaml:"simulation"`          // 模拟参数（无战斗系统时使用）
}

// SpawnPointConfig 单个生成点
type SpawnPointConfig struct {
	ID   string     `yaml:"id"`   // 生成点ID，缺省为 "<zone>-<序号>"
	Zone types.Zone `yaml:"zone"` // 所属区域
	X    float64    `yaml:"x"`
	Y    float64    `yaml:"y"`
}

// Position 生成点世界坐标
func (s SpawnPointConfig) Position() types.Position {
	return types.Position{X: s.X, Y: s.Y}
}

// GateConfig 单扇门的配置
type GateConfig struct {
	Zone         types.Zone `yaml:"zone"`         // 所属外围区域
	MaxHealth    float64    `yaml:"maxHealth"`    // 最大耐久，默认 500
	Destructible bool       `yaml:"destructible"` // 是否可被破坏
}

// SimulationConfig 敌人存活模拟参数
type SimulationConfig struct {
	MinLifetime float64 `yaml:"minLifetime"` // 最短存活（秒），默认 4
	MaxLifetime float64 `yaml:"maxLifetime"` // 最长存活（秒），默认 10
	Seed        int64   `yaml:"seed"`        // 随机种子，默认 1
}

const (
	DefaultGateMaxHealth = 500.0
	DefaultMinLifetime   = 4.0
	DefaultMaxLifetime   = 10.0
)

// DefaultArenaConfig 返回内置的默认场地
func DefaultArenaConfig() *ArenaConfig {
	arena := &ArenaConfig{
		Center: types.Position{X: 400, Y: 300},
		SpawnPoints: []SpawnPointConfig{
			{ID: "north-gatehouse", Zone: types.ZoneNorth, X: 400, Y: 60},
			{ID: "north-ridge", Zone: types.ZoneNorth, X: 340, Y: 40},
			{ID: "north-ruins", Zone: types.ZoneNorth, X: 470, Y: 30},
			{ID: "east-docks", Zone: types.ZoneEast, X: 740, Y: 300},
			{ID: "east-warehouse", Zone: types.ZoneEast, X: 760, Y: 240},
			{ID: "south-market", Zone: types.ZoneSouth, X: 400, Y: 540},
			{ID: "south-sewer", Zone: types.ZoneSouth, X: 330, Y: 570},
			{ID: "west-forest", Zone: types.ZoneWest, X: 60, Y: 300},
			{ID: "west-quarry", Zone: types.ZoneWest, X: 40, Y: 360},
			{ID: "center-plaza", Zone: types.ZoneCenter, X: 400, Y: 250},
			{ID: "center-fountain", Zone: types.ZoneCenter, X: 450, Y: 300},
		},
		Gates: []GateConfig{
			{Zone: types.ZoneNorth, MaxHealth: DefaultGateMaxHealth, Destructible: true},
			{Zone: types.ZoneEast, MaxHealth: DefaultGateMaxHealth, Destructible: true},
			{Zone: types.ZoneSouth, MaxHealth: DefaultGateMaxHealth, Destructible: true},
			{Zone: types.ZoneWest, MaxHealth: DefaultGateMaxHealth, Destructible: true},
		},
	}
	applyArenaDefaults(arena)
	return arena
}

// LoadArenaConfig 从YAML文件加载场地配置
func LoadArenaConfig(filePath string) (*ArenaConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read arena config file %s: %w", filePath, err)
	}

	arena, err := ParseArenaConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return arena, nil
}

// ParseArenaConfig 解析YAML数据并应用默认值、校验
func ParseArenaConfig(data []byte) (*ArenaConfig, error) {
	var arena ArenaConfig
	if err := yaml.Unmarshal(data, &arena); err != nil {
		return nil, fmt.Errorf("failed to parse arena config YAML: %w", err)
	}

	applyArenaDefaults(&arena)

	if err := validateArenaConfig(&arena); err != nil {
		return nil, fmt.Errorf("invalid arena config: %w", err)
	}

	return &arena, nil
}

// applyArenaDefaults 为缺失的可选字段设置默认值
func applyArenaDefaults(arena *ArenaConfig) {
	if arena.DestroyedGatePolicy == "" {
		arena.DestroyedGatePolicy = GatePolicyRepair
	}

	// 生成点ID缺省为 "<zone>-<区域内序号>"
	perZone := make(map[types.Zone]int)
	for i := range arena.SpawnPoints {
		sp := &arena.SpawnPoints[i]
		perZone[sp.Zone]++
		if sp.ID == "" {
			sp.ID = fmt.Sprintf("%s-%d", sp.Zone, perZone[sp.Zone])
		}
	}

	// 缺失的外围区域补一扇默认门
	for _, zone := range types.OuterZones {
		found := false
		for _, g := range arena.Gates {
			if g.Zone == zone {
				found = true
				break
			}
		}
		if !found {
			arena.Gates = append(arena.Gates, GateConfig{Zone: zone, MaxHealth: DefaultGateMaxHealth, Destructible: true})
		}
	}
	for i := range arena.Gates {
		if arena.Gates[i].MaxHealth == 0 {
			arena.Gates[i].MaxHealth = DefaultGateMaxHealth
		}
	}

	if arena.Simulation.MinLifetime == 0 {
		arena.Simulation.MinLifetime = DefaultMinLifetime
	}
	if arena.Simulation.MaxLifetime == 0 {
		arena.Simulation.MaxLifetime = DefaultMaxLifetime
	}
	if arena.Simulation.Seed == 0 {
		arena.Simulation.Seed = 1
	}
}

// validateArenaConfig 验证场地配置的完整性和合法性
// 注意：某个区域没有生成点不是错误，编排器会记录警告并贡献 0 个敌人
func validateArenaConfig(arena *ArenaConfig) error {
	ids := make(map[string]bool, len(arena.SpawnPoints))
	for i, sp := range arena.SpawnPoints {
		if !sp.Zone.IsValid() {
			return fmt.Errorf("spawnPoints[%d]: unknown zone %d", i, int(sp.Zone))
		}
		if ids[sp.ID] {
			return fmt.Errorf("spawnPoints[%d]: duplicate id %q", i, sp.ID)
		}
		ids[sp.ID] = true
	}

	gates := make(map[types.Zone]bool, len(arena.Gates))
	for i, g := range arena.Gates {
		if !g.Zone.HasGate() {
			return fmt.Errorf("gates[%d]: zone %s cannot have a gate", i, g.Zone)
		}
		if gates[g.Zone] {
			return fmt.Errorf("gates[%d]: duplicate gate for zone %s", i, g.Zone)
		}
		gates[g.Zone] = true
		if g.MaxHealth < 0 {
			return fmt.Errorf("gates[%d]: maxHealth cannot be negative, got %v", i, g.MaxHealth)
		}
	}

	switch arena.DestroyedGatePolicy {
	case GatePolicyRepair, GatePolicyStayOpen:
	default:
		return fmt.Errorf("destroyedGatePolicy must be one of: %s, %s, got %q",
			GatePolicyRepair, GatePolicyStayOpen, arena.DestroyedGatePolicy)
	}

	sim := arena.Simulation
	if sim.MinLifetime < 0 || sim.MaxLifetime < sim.MinLifetime {
		return fmt.Errorf("simulation lifetimes must satisfy 0 <= minLifetime <= maxLifetime, got %v..%v",
			sim.MinLifetime, sim.MaxLifetime)
	}

	return nil
}

// SpawnPointsInZone 返回指定区域的生成点（保持配置顺序）
func (a *ArenaConfig) SpawnPointsInZone(zone types.Zone) []SpawnPointConfig {
	result := make([]SpawnPointConfig, 0)
	for _, sp := range a.SpawnPoints {
		if sp.Zone == zone {
			result = append(result, sp)
		}
	}
	return result
}

// GateFor 获取指定区域的门配置
func (a *ArenaConfig) GateFor(zone types.Zone) (GateConfig, bool) {
	for _, g := range a.Gates {
		if g.Zone == zone {
			return g, true
		}
	}
	return GateConfig{}, false
}
