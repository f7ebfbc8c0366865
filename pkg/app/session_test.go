package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/wavesurvival/pkg/types"
)

const testDelta = 1.0 / 60.0

func TestNewSession_Defaults(t *testing.T) {
	s, err := NewSession(SessionOptions{})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 1, s.StartWave())
	assert.NotNil(t, s.Arena())
	assert.Equal(t, types.WaveStateIdle, s.Orchestrator().CurrentWaveState())
}

func TestNewSession_StartWaveOverridesResume(t *testing.T) {
	s, err := NewSession(SessionOptions{StartWave: 5, Resume: true})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Start())
	assert.Equal(t, 5, s.Orchestrator().CurrentWaveNumber())
	assert.Equal(t, []types.Zone{types.ZoneSouth}, s.Gates().OpenZones())
}

// TestSession_CompletesFirstWave 敌人在存活时间耗尽后被移除，编排器随之完成本波
func TestSession_CompletesFirstWave(t *testing.T) {
	s, err := NewSession(SessionOptions{DisableAutoAdvance: true})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Start())
	for i := 0; i < 60*60 && s.CompletedWaves() == 0; i++ {
		s.Update(testDelta)
	}

	assert.Equal(t, 1, s.CompletedWaves())
	assert.Equal(t, 1, s.LastCompletedWave())
	assert.Equal(t, types.WaveStateComplete, s.Orchestrator().CurrentWaveState())
	assert.Equal(t, 0, s.World().CountLiveActors())
	assert.Equal(t, 0, s.Orchestrator().GetActiveEnemyCount())
	assert.Equal(t, 1, s.Checkpoints().Checkpoint().LastCompletedWave)
	assert.Equal(t, 2, s.Checkpoints().ResumeWave())
}

func TestSession_KillAllFinishesCleanup(t *testing.T) {
	s, err := NewSession(SessionOptions{DisableAutoAdvance: true})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Start())
	// 4 个敌人间隔 0.6 秒，2 秒后全部生成，默认存活时间至少 4 秒
	for i := 0; i < 120; i++ {
		s.Update(testDelta)
	}
	require.Equal(t, types.WaveStateCleanup, s.Orchestrator().CurrentWaveState())
	require.Equal(t, 4, s.World().CountLiveActors())

	s.World().KillAll()
	s.Update(testDelta)

	assert.Equal(t, types.WaveStateComplete, s.Orchestrator().CurrentWaveState())
	assert.Equal(t, 1, s.CompletedWaves())
}

func TestSession_ReconcileBetweenKillAndUpdate(t *testing.T) {
	s, err := NewSession(SessionOptions{DisableAutoAdvance: true})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Start())
	for i := 0; i < 120; i++ {
		s.Update(testDelta)
	}
	require.Equal(t, types.WaveStateCleanup, s.Orchestrator().CurrentWaveState())
	require.Equal(t, 4, s.Orchestrator().GetActiveEnemyCount())

	// 击杀后立即校正（如按 R 键），移除通知在下一帧才到达
	for remaining := 3; remaining >= 1; remaining-- {
		actors := s.World().Actors()
		require.NotEmpty(t, actors)
		require.NoError(t, s.World().Kill(actors[0].Handle))

		s.Orchestrator().ReconcileNow()
		s.Update(testDelta)

		assert.Equal(t, remaining, len(s.World().Actors()))
		assert.Equal(t, remaining, s.Orchestrator().GetActiveEnemyCount())
		assert.Equal(t, types.WaveStateCleanup, s.Orchestrator().CurrentWaveState(),
			"wave must not complete with %d actors alive", remaining)
	}

	require.NoError(t, s.World().Kill(s.World().Actors()[0].Handle))
	s.Orchestrator().ReconcileNow()
	s.Update(testDelta)

	assert.Equal(t, types.WaveStateComplete, s.Orchestrator().CurrentWaveState())
	assert.Equal(t, 0, s.World().CountLiveActors())
	assert.Equal(t, 0, s.Orchestrator().GetActiveEnemyCount())
}

func TestSession_Toggle(t *testing.T) {
	s, err := NewSession(SessionOptions{})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Toggle())
	assert.Equal(t, types.WaveStateActive, s.Orchestrator().CurrentWaveState())

	require.NoError(t, s.Toggle())
	assert.Equal(t, types.WaveStateIdle, s.Orchestrator().CurrentWaveState())

	require.NoError(t, s.Toggle())
	assert.Equal(t, 1, s.Orchestrator().CurrentWaveNumber())
	assert.Equal(t, types.WaveStateActive, s.Orchestrator().CurrentWaveState())
}

func TestRunner_StopsAfterMaxWaves(t *testing.T) {
	s, err := NewSession(SessionOptions{})
	require.NoError(t, err)
	defer s.Close()

	result, err := NewRunner(s, RunnerOptions{MaxWaves: 2}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopMaxWaves, result.Reason)
	assert.Equal(t, 2, result.WavesCompleted)
	assert.Equal(t, 2, result.LastWave)
	assert.Equal(t, types.WaveStateIdle, s.Orchestrator().CurrentWaveState())
}

func TestRunner_StopsAtMaxSimTime(t *testing.T) {
	s, err := NewSession(SessionOptions{})
	require.NoError(t, err)
	defer s.Close()

	result, err := NewRunner(s, RunnerOptions{MaxSimTime: 1}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopMaxSimTime, result.Reason)
	assert.GreaterOrEqual(t, result.SimulatedTime, 1.0)
	assert.InDelta(t, 60, result.Ticks, 1)
}

func TestRunner_CanceledContext(t *testing.T) {
	s, err := NewSession(SessionOptions{})
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewRunner(s, RunnerOptions{}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, StopCanceled, result.Reason)
	assert.Equal(t, 0, result.Ticks)
}

func TestRunner_RealtimeMaxDuration(t *testing.T) {
	s, err := NewSession(SessionOptions{})
	require.NoError(t, err)
	defer s.Close()

	result, err := NewRunner(s, RunnerOptions{Realtime: true, MaxDuration: 100 * time.Millisecond}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopMaxDuration, result.Reason)
	assert.Less(t, result.SimulatedTime, 5.0)
}
