package game

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/gonewx/wavesurvival/pkg/event"
)

// Checkpoint 存档点：最近完成的波次
type Checkpoint struct {
	SessionID         string    `yaml:"sessionId"`
	LastCompletedWave int       `yaml:"lastCompletedWave"`
	SavedAt           time.Time `yaml:"savedAt"`
}

// 存储路径常量
const (
	checkpointObject   = "checkpoint"
	checkpointProperty = "latest"
)

// CheckpointManager 存档点管理器
// 订阅波次完成通知，每完成一波保存一次，供下次启动时从下一波继续
type CheckpointManager struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，仅内存）
	checkpoint   Checkpoint

	dispatcher   *event.Dispatcher
	subscription event.SubscriptionID
	sessionID    uuid.UUID
}

// NewCheckpointManager 创建存档点管理器
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式）
//
// 加载失败不是致命错误：记录日志并从空存档开始
func NewCheckpointManager(gdataManager *gdata.Manager) *CheckpointManager {
	cm := &CheckpointManager{gdataManager: gdataManager}
	if err := cm.Load(); err != nil {
		log.Printf("[CheckpointManager] Warning: Failed to load checkpoint: %v (starting fresh)", err)
	}
	return cm
}

// Load 从 gdata 加载存档点
func (cm *CheckpointManager) Load() error {
	cm.checkpoint = Checkpoint{}
	if cm.gdataManager == nil {
		return nil
	}
	if !cm.gdataManager.ObjectPropExists(checkpointObject, checkpointProperty) {
		return nil
	}

	data, err := cm.gdataManager.LoadObjectProp(checkpointObject, checkpointProperty)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	var loaded Checkpoint
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	if loaded.LastCompletedWave < 0 {
		return fmt.Errorf("invalid checkpoint: lastCompletedWave %d", loaded.LastCompletedWave)
	}

	cm.checkpoint = loaded
	log.Printf("[CheckpointManager] Checkpoint loaded: wave %d completed (session %s)",
		loaded.LastCompletedWave, loaded.SessionID)
	return nil
}

// Save 保存当前存档点；降级模式下直接返回 nil
func (cm *CheckpointManager) Save() error {
	if cm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(&cm.checkpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	if err := cm.gdataManager.SaveObjectProp(checkpointObject, checkpointProperty, data); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Record 记录完成的波次并保存
// 波次号不大于已记录的值时忽略（例如重玩较早的波次）
func (cm *CheckpointManager) Record(sessionID uuid.UUID, waveNumber int) error {
	if waveNumber <= cm.checkpoint.LastCompletedWave {
		return nil
	}
	cm.checkpoint = Checkpoint{
		SessionID:         sessionID.String(),
		LastCompletedWave: waveNumber,
		SavedAt:           time.Now().UTC().Truncate(time.Second),
	}
	if err := cm.Save(); err != nil {
		return err
	}
	log.Printf("[CheckpointManager] Wave %d recorded", waveNumber)
	return nil
}

// Clear 清空存档点（保存一个空存档）
func (cm *CheckpointManager) Clear() error {
	cm.checkpoint = Checkpoint{}
	return cm.Save()
}

// Attach 订阅波次完成通知
// 重复调用会先解除旧的订阅
func (cm *CheckpointManager) Attach(dispatcher *event.Dispatcher, sessionID uuid.UUID) {
	cm.Detach()
	cm.dispatcher = dispatcher
	cm.sessionID = sessionID
	cm.subscription = dispatcher.SubscribeFunc(event.WaveCompleted, func(e event.Event) {
		if err := cm.Record(cm.sessionID, e.WaveNumber); err != nil {
			log.Printf("[CheckpointManager] ERROR: %v", err)
		}
	})
}

// Detach 解除订阅
func (cm *CheckpointManager) Detach() {
	if cm.dispatcher == nil {
		return
	}
	cm.dispatcher.Unsubscribe(cm.subscription)
	cm.dispatcher = nil
}

// Checkpoint 当前存档点
func (cm *CheckpointManager) Checkpoint() Checkpoint {
	return cm.checkpoint
}

// ResumeWave 继续游戏时应开始的波次
func (cm *CheckpointManager) ResumeWave() int {
	return cm.checkpoint.LastCompletedWave + 1
}
