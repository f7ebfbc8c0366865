// Package types 定义共享的基础类型
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Zone 地图区域（固定集合，运行时不会创建或销毁）
type Zone int

const (
	// ZoneNorth 北区
	ZoneNorth Zone = iota
	// ZoneEast 东区
	ZoneEast
	// ZoneSouth 南区
	ZoneSouth
	// ZoneWest 西区
	ZoneWest
	// ZoneCenter 中心区（无门，始终可进入）
	ZoneCenter
)

// AllZones 全部区域，按枚举顺序
var AllZones = []Zone{ZoneNorth, ZoneEast, ZoneSouth, ZoneWest, ZoneCenter}

// OuterZones 四个带门的外围区域
var OuterZones = []Zone{ZoneNorth, ZoneEast, ZoneSouth, ZoneWest}

var zoneNames = map[Zone]string{
	ZoneNorth:  "north",
	ZoneEast:   "east",
	ZoneSouth:  "south",
	ZoneWest:   "west",
	ZoneCenter: "center",
}

// String 返回区域的小写名称（与 YAML 配置一致）
func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("zone(%d)", int(z))
}

// IsValid 是否为已定义的区域
func (z Zone) IsValid() bool {
	_, ok := zoneNames[z]
	return ok
}

// HasGate 是否拥有边界门（中心区没有）
func (z Zone) HasGate() bool {
	return z.IsValid() && z != ZoneCenter
}

// GateName 返回该区域对应的门名称，如 "NorthGate"
// 中心区返回空字符串
func (z Zone) GateName() string {
	if !z.HasGate() {
		return ""
	}
	name := z.String()
	return strings.ToUpper(name[:1]) + name[1:] + "Gate"
}

// ParseZone 从字符串解析区域（大小写不敏感）
func ParseZone(s string) (Zone, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for zone, name := range zoneNames {
		if name == key {
			return zone, nil
		}
	}
	return 0, fmt.Errorf("unknown zone %q", s)
}

// UnmarshalText 支持在 YAML 中直接写 "north" 等名称
func (z *Zone) UnmarshalText(text []byte) error {
	parsed, err := ParseZone(string(text))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}

// MarshalText 序列化为区域名称
func (z Zone) MarshalText() ([]byte, error) {
	if !z.IsValid() {
		return nil, fmt.Errorf("unknown zone %d", int(z))
	}
	return []byte(z.String()), nil
}

// SortZones 去重并按枚举顺序排序，返回新切片
func SortZones(zones []Zone) []Zone {
	seen := make(map[Zone]bool, len(zones))
	result := make([]Zone, 0, len(zones))
	for _, z := range zones {
		if seen[z] {
			continue
		}
		seen[z] = true
		result = append(result, z)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// ContainsZone 判断区域集合中是否包含指定区域
func ContainsZone(zones []Zone, zone Zone) bool {
	for _, z := range zones {
		if z == zone {
			return true
		}
	}
	return false
}

// FormatZones 将区域集合格式化为 "north+west" 形式（用于描述与日志）
func FormatZones(zones []Zone) string {
	if len(zones) == 0 {
		return "none"
	}
	names := make([]string, len(zones))
	for i, z := range zones {
		names[i] = z.String()
	}
	return strings.Join(names, "+")
}
