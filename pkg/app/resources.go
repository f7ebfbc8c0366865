package app

import (
	"fmt"
	"log"

	"github.com/gonewx/wavesurvival/pkg/config"
	"github.com/gonewx/wavesurvival/pkg/embedded"
)

// 嵌入数据文件路径
const (
	EmbeddedTunablesPath = "data/wave_tunables.yaml"
	EmbeddedArenaPath    = "data/arena.yaml"
)

// LoadTunables 加载波次调参
//
// 加载顺序：
//  1. path 非空时从文件系统加载（失败即返回错误）
//  2. 嵌入数据中存在时从嵌入数据加载
//  3. 内置默认值
func LoadTunables(path string) (*config.WaveTunables, error) {
	if path != "" {
		return config.LoadWaveTunables(path)
	}
	if embedded.Exists(EmbeddedTunablesPath) {
		data, err := embedded.ReadFile(EmbeddedTunablesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded %s: %w", EmbeddedTunablesPath, err)
		}
		tunables, err := config.ParseWaveTunables(data)
		if err != nil {
			return nil, fmt.Errorf("embedded %s: %w", EmbeddedTunablesPath, err)
		}
		log.Printf("[App] Wave tunables loaded from embedded %s", EmbeddedTunablesPath)
		return tunables, nil
	}
	log.Printf("[App] Using built-in wave tunables")
	return config.DefaultWaveTunables(), nil
}

// LoadArena 加载场地配置，加载顺序同 LoadTunables
func LoadArena(path string) (*config.ArenaConfig, error) {
	if path != "" {
		return config.LoadArenaConfig(path)
	}
	if embedded.Exists(EmbeddedArenaPath) {
		data, err := embedded.ReadFile(EmbeddedArenaPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded %s: %w", EmbeddedArenaPath, err)
		}
		arena, err := config.ParseArenaConfig(data)
		if err != nil {
			return nil, fmt.Errorf("embedded %s: %w", EmbeddedArenaPath, err)
		}
		log.Printf("[App] Arena loaded from embedded %s", EmbeddedArenaPath)
		return arena, nil
	}
	log.Printf("[App] Using built-in arena")
	return config.DefaultArenaConfig(), nil
}
