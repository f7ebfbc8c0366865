package systems

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gonewx/wavesurvival/pkg/config"
	"github.com/gonewx/wavesurvival/pkg/types"
)

var testPoint = SpawnPoint{ID: "north-1", Zone: types.ZoneNorth, Position: types.Position{X: 10, Y: 20}}

func newTestTask(producer *stubProducer, recorder *taskRecorder) *SpawnTask {
	return NewSpawnTask(testPoint, producer, recorder, rand.New(rand.NewSource(7)))
}

// TestSpawnTask_ProducesOnInterval 目标 3、间隔 0.6：在 0、0.6、1.2 秒生成，之后完成
func TestSpawnTask_ProducesOnInterval(t *testing.T) {
	producer := &stubProducer{}
	recorder := &taskRecorder{}
	task := newTestTask(producer, recorder)

	task.Start(SpawnTaskConfig{WaveNumber: 1, Roster: []types.ActorKind{"grunt"}, TargetCount: 3, Interval: 0.6}, 0)
	assert.True(t, task.IsRunning())
	assert.Equal(t, 0.0, task.InitialDelay())

	running, produced := task.Update(0)
	assert.True(t, running)
	assert.Equal(t, 1, produced)

	running, produced = task.Update(0.3)
	assert.True(t, running)
	assert.Equal(t, 0, produced)

	running, produced = task.Update(0.3)
	assert.True(t, running)
	assert.Equal(t, 1, produced)

	running, produced = task.Update(0.6)
	assert.False(t, running)
	assert.Equal(t, 1, produced)

	assert.Equal(t, 3, task.SpawnedCount())
	assert.Len(t, recorder.produced, 3)
	assert.Equal(t, 1, recorder.completed)
	assert.True(t, task.IsCompleted())

	// 完成后不再生成，也不再汇报
	running, produced = task.Update(5)
	assert.False(t, running)
	assert.Equal(t, 0, produced)
	assert.Equal(t, 1, recorder.completed)

	for _, a := range producer.produced {
		assert.Equal(t, testPoint.Position, a.at)
		assert.Equal(t, types.ActorKind("grunt"), a.kind)
	}
}

func TestSpawnTask_StaggerDelaysFirstActor(t *testing.T) {
	recorder := &taskRecorder{}
	task := newTestTask(&stubProducer{}, recorder)

	task.Start(SpawnTaskConfig{Roster: []types.ActorKind{"grunt"}, TargetCount: 2, Interval: 0.5}, 2)
	assert.Equal(t, 1.0, task.InitialDelay())

	_, produced := task.Update(0.75)
	assert.Equal(t, 0, produced)

	_, produced = task.Update(0.25)
	assert.Equal(t, 1, produced)

	_, produced = task.Update(0.5)
	assert.Equal(t, 1, produced)
	assert.Equal(t, 1, recorder.completed)
}

func TestSpawnTask_LargeDeltaCatchesUp(t *testing.T) {
	recorder := &taskRecorder{}
	task := newTestTask(&stubProducer{}, recorder)

	task.Start(SpawnTaskConfig{Roster: []types.ActorKind{"grunt"}, TargetCount: 5, Interval: 0.5}, 0)
	running, produced := task.Update(100)

	assert.False(t, running)
	assert.Equal(t, 5, produced)
	assert.Equal(t, 5, task.SpawnedCount())
	assert.Equal(t, 1, recorder.completed)
}

func TestSpawnTask_EmptyRosterCompletesImmediately(t *testing.T) {
	producer := &stubProducer{}
	recorder := &taskRecorder{}
	task := newTestTask(producer, recorder)

	task.Start(SpawnTaskConfig{WaveNumber: 4, Roster: nil, TargetCount: 10, Interval: 0.5}, 0)

	assert.False(t, task.IsRunning())
	assert.True(t, task.IsCompleted())
	assert.Equal(t, 1, recorder.completed)
	assert.Empty(t, producer.produced)
}

func TestSpawnTask_ZeroTargetCompletesImmediately(t *testing.T) {
	recorder := &taskRecorder{}
	task := newTestTask(&stubProducer{}, recorder)

	task.Start(SpawnTaskConfig{Roster: []types.ActorKind{"grunt"}, TargetCount: 0, Interval: 0.5}, 0)

	assert.False(t, task.IsRunning())
	assert.Equal(t, 1, recorder.completed)
}

func TestSpawnTask_StopNeverReportsCompletion(t *testing.T) {
	producer := &stubProducer{}
	recorder := &taskRecorder{}
	task := newTestTask(producer, recorder)

	task.Start(SpawnTaskConfig{Roster: []types.ActorKind{"grunt"}, TargetCount: 3, Interval: 0.6}, 0)
	task.Update(0)
	task.Stop()
	task.Stop()

	running, produced := task.Update(10)
	assert.False(t, running)
	assert.Equal(t, 0, produced)
	assert.Equal(t, 1, task.SpawnedCount())
	assert.Equal(t, 0, recorder.completed)
	assert.False(t, task.IsCompleted())
}

func TestSpawnTask_StopFromCallback(t *testing.T) {
	recorder := &taskRecorder{}
	recorder.onProduce = func(task *SpawnTask) { task.Stop() }
	task := newTestTask(&stubProducer{}, recorder)

	task.Start(SpawnTaskConfig{Roster: []types.ActorKind{"grunt"}, TargetCount: 5, Interval: 0.1}, 0)
	_, produced := task.Update(10)

	assert.Equal(t, 1, produced)
	assert.Equal(t, 0, recorder.completed)
}

func TestSpawnTask_FailedProduceStillCounts(t *testing.T) {
	producer := &stubProducer{fail: true}
	recorder := &taskRecorder{}
	task := newTestTask(producer, recorder)

	task.Start(SpawnTaskConfig{Roster: []types.ActorKind{"grunt"}, TargetCount: 2, Interval: 0.5}, 0)
	task.Update(1)

	assert.Equal(t, 2, task.SpawnedCount())
	assert.Empty(t, recorder.produced)
	assert.Equal(t, 1, recorder.completed)
}

func TestSpawnTask_IntervalClampedToFloor(t *testing.T) {
	task := newTestTask(&stubProducer{}, &taskRecorder{})

	task.Start(SpawnTaskConfig{Roster: []types.ActorKind{"grunt"}, TargetCount: 2, Interval: 0}, 0)
	assert.Equal(t, config.DefaultMinSpawnInterval, task.Interval())
}

func TestSpawnTask_RestartResetsProgress(t *testing.T) {
	recorder := &taskRecorder{}
	task := newTestTask(&stubProducer{}, recorder)

	task.Start(SpawnTaskConfig{Roster: []types.ActorKind{"grunt"}, TargetCount: 3, Interval: 0.5}, 0)
	task.Update(0)
	task.Start(SpawnTaskConfig{Roster: []types.ActorKind{"runner"}, TargetCount: 1, Interval: 0.5}, 0)

	assert.Equal(t, 0, task.SpawnedCount())
	task.Update(0)
	assert.Equal(t, 1, recorder.completed)
	assert.Equal(t, types.ActorKind("runner"), recorder.kinds[len(recorder.kinds)-1])
}

func TestSpawnTask_RosterDrawIsDeterministic(t *testing.T) {
	roster := []types.ActorKind{"grunt", "grunt", "runner", "brute"}
	draw := func() []types.ActorKind {
		recorder := &taskRecorder{}
		task := NewSpawnTask(testPoint, &stubProducer{}, recorder, rand.New(rand.NewSource(42)))
		task.Start(SpawnTaskConfig{Roster: roster, TargetCount: 20, Interval: 0.1}, 0)
		task.Update(10)
		return recorder.kinds
	}

	assert.Equal(t, draw(), draw())
}
