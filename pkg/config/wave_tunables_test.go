package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/wavesurvival/pkg/types"
)

func TestParseWaveTunables(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *WaveTunables)
	}{
		{
			name: "valid config",
			yamlContent: `
difficulty:
  countModifier: 1.5
  speedModifier: 2
  bossModifier: 1.2
  finalPhaseScalingModifier: 1.05
timing:
  minSpawnInterval: 0.1
  delayBetweenWaves: 8
  reconcileInterval: 1
phases:
  learning:
    waveIncrement: 5
    spawnerCount: 1
    baseInterval: 0.7
    intervalDecay: 0.01
  final:
    waveIncrement: 2
    spawnerCount: 3
actors:
  - kind: grunt
    unlockWave: 1
    weights:
      learning: 3
      final: 1
  - kind: brute
    unlockWave: 8
    weights:
      combination: 2
`,
			validate: func(t *testing.T, cfg *WaveTunables) {
				assert.Equal(t, 1.5, cfg.Difficulty.CountModifier)
				assert.Equal(t, 2.0, cfg.Difficulty.SpeedModifier)
				assert.Equal(t, 8.0, cfg.Timing.DelayBetweenWaves)

				learning := cfg.PhaseTunable(types.PhaseLearning)
				assert.Equal(t, 5, learning.WaveIncrement)
				assert.Equal(t, 0.01, learning.Decay())

				final := cfg.PhaseTunable(types.PhaseFinal)
				assert.Equal(t, 3, final.SpawnerCount)
				assert.Equal(t, 0.55, final.BaseInterval, "missing baseInterval falls back to phase default")
				assert.Equal(t, 0.03, final.Decay())

				// 未配置的阶段使用内置默认值
				assert.Equal(t, 3, cfg.PhaseTunable(types.PhaseCombination).WaveIncrement)

				require.Len(t, cfg.Actors, 2)
				assert.Equal(t, 3, cfg.Actors[0].Weight(types.PhaseLearning))
				assert.Equal(t, 0, cfg.Actors[0].Weight(types.PhaseBoss))
			},
		},
		{
			name:        "empty document uses defaults",
			yamlContent: `{}`,
			validate: func(t *testing.T, cfg *WaveTunables) {
				assert.Equal(t, DefaultCountModifier, cfg.Difficulty.CountModifier)
				assert.Equal(t, DefaultBossModifier, cfg.Difficulty.BossModifier)
				assert.Equal(t, DefaultMinSpawnInterval, cfg.Timing.MinSpawnInterval)
				assert.Equal(t, DefaultReconcileInterval, cfg.Timing.ReconcileInterval)
				assert.Len(t, cfg.Phases, len(types.AllPhases))
				assert.Empty(t, cfg.Actors)
			},
		},
		{
			name: "partial phase keeps phase defaults",
			yamlContent: `
phases:
  final:
    waveIncrement: 5
  boss:
    baseInterval: 0.4
    intervalDecay: 0
`,
			validate: func(t *testing.T, cfg *WaveTunables) {
				final := cfg.PhaseTunable(types.PhaseFinal)
				assert.Equal(t, 5, final.WaveIncrement)
				assert.Equal(t, 2, final.SpawnerCount, "missing spawnerCount falls back to the phase default")
				assert.Equal(t, 0.03, final.Decay())

				boss := cfg.PhaseTunable(types.PhaseBoss)
				assert.Equal(t, 2, boss.SpawnerCount)
				require.NotNil(t, boss.IntervalDecay)
				assert.Equal(t, 0.0, boss.Decay(), "explicit zero decay is kept")
			},
		},
		{
			name: "unknown phase name",
			yamlContent: `
phases:
  tutorial:
    waveIncrement: 1
`,
			wantErr:     true,
			errContains: `unknown phase "tutorial"`,
		},
		{
			name: "negative speed modifier",
			yamlContent: `
difficulty:
  speedModifier: -1
`,
			wantErr:     true,
			errContains: "speedModifier must be positive",
		},
		{
			name: "duplicate actor kind",
			yamlContent: `
actors:
  - kind: grunt
    unlockWave: 1
  - kind: grunt
    unlockWave: 2
`,
			wantErr:     true,
			errContains: `duplicate kind "grunt"`,
		},
		{
			name: "actor unlock wave zero",
			yamlContent: `
actors:
  - kind: grunt
    unlockWave: 0
`,
			wantErr:     true,
			errContains: "unlockWave must be at least 1",
		},
		{
			name: "negative weight",
			yamlContent: `
actors:
  - kind: grunt
    unlockWave: 1
    weights:
      learning: -2
`,
			wantErr:     true,
			errContains: "cannot be negative",
		},
		{
			name:        "malformed yaml",
			yamlContent: "difficulty: [",
			wantErr:     true,
			errContains: "failed to parse wave tunables YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseWaveTunables([]byte(tt.yamlContent))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadWaveTunablesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wave_tunables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("difficulty:\n  countModifier: 2\n"), 0o644))

	cfg, err := LoadWaveTunables(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Difficulty.CountModifier)

	_, err = LoadWaveTunables(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read wave tunables file")
}

func TestDefaultWaveTunablesAreValid(t *testing.T) {
	cfg := DefaultWaveTunables()
	require.NoError(t, validateWaveTunables(cfg))

	// 每个非 Boss 阶段至少有一种已解锁类型权重大于 0
	for _, phase := range []types.Phase{types.PhaseLearning, types.PhaseCombination, types.PhaseInverted, types.PhaseFinal, types.PhaseBoss} {
		total := 0
		for _, actor := range cfg.Actors {
			total += actor.Weight(phase)
		}
		assert.Positive(t, total, "phase %s has no weighted actors", phase)
	}
}

// TestShippedTunablesMatchDefaults data/ 中的调参与内置默认值一致
func TestShippedTunablesMatchDefaults(t *testing.T) {
	tunables, err := LoadWaveTunables(filepath.Join("..", "..", "data", "wave_tunables.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultWaveTunables(), tunables)
}
