package ecs

import (
	"reflect"
	"testing"
)

// 测试组件类型定义
type testPositionComponent struct {
	X, Y float64
}

type testLifetimeComponent struct {
	Remaining float64
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	// 测试实体ID唯一性
	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}

	// 测试ID从1开始
	if id1 != 1 {
		t.Errorf("First entity ID should be 1, got %d", id1)
	}

	if em.EntityCount() != 2 {
		t.Errorf("Expected 2 entities, got %d", em.EntityCount())
	}
}

func TestGenericComponentAccess(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	AddComponent(em, id, &testPositionComponent{X: 100, Y: 200})

	pos, ok := GetComponent[*testPositionComponent](em, id)
	if !ok {
		t.Fatal("Component should be found")
	}
	if pos.X != 100 || pos.Y != 200 {
		t.Errorf("Component data mismatch, expected (100, 200), got (%f, %f)", pos.X, pos.Y)
	}

	if HasComponent[*testLifetimeComponent](em, id) {
		t.Error("Should not have lifetime component")
	}

	// 与反射接口互通
	if !em.HasComponent(id, reflect.TypeOf(&testPositionComponent{})) {
		t.Error("Reflection lookup should see generic component")
	}
}

func TestDestroyEntityIsDeferred(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	AddComponent(em, id, &testPositionComponent{})

	// 标记删除（重复标记）
	em.DestroyEntity(id)
	em.DestroyEntity(id)

	// 清理前实体仍存在
	if !em.Exists(id) || !em.IsMarkedForDestroy(id) {
		t.Error("Entity should still exist and be marked before cleanup")
	}

	removed := em.RemoveMarkedEntities()
	if len(removed) != 1 || removed[0] != id {
		t.Errorf("Expected exactly [%d] removed, got %v", id, removed)
	}
	if em.Exists(id) {
		t.Error("Entity should be removed after cleanup")
	}

	// 再次清理不应返回已删除实体
	em.DestroyEntity(id)
	if removed := em.RemoveMarkedEntities(); len(removed) != 0 {
		t.Errorf("Expected nothing removed for missing entity, got %v", removed)
	}
}

func TestDestroyEntityKeepsMarkOrder(t *testing.T) {
	em := NewEntityManager()

	ids := make([]EntityID, 0, 1000)
	for i := 0; i < 1000; i++ {
		ids = append(ids, em.CreateEntity())
	}

	// 逆序标记，每个实体标记两次
	for i := len(ids) - 1; i >= 0; i-- {
		em.DestroyEntity(ids[i])
		em.DestroyEntity(ids[i])
	}

	removed := em.RemoveMarkedEntities()
	if len(removed) != len(ids) {
		t.Fatalf("Expected %d removed, got %d", len(ids), len(removed))
	}
	for i, id := range removed {
		if want := ids[len(ids)-1-i]; id != want {
			t.Fatalf("removed[%d] = %d, want %d", i, id, want)
		}
	}

	// 清理后标记集合被重置
	if em.IsMarkedForDestroy(ids[0]) {
		t.Error("Mark should be cleared after cleanup")
	}
	next := em.CreateEntity()
	em.DestroyEntity(next)
	if !em.IsMarkedForDestroy(next) {
		t.Error("New entity should be markable after cleanup")
	}
}

func TestGetEntitiesWithIsSorted(t *testing.T) {
	em := NewEntityManager()

	ids := make([]EntityID, 0, 20)
	for i := 0; i < 20; i++ {
		id := em.CreateEntity()
		AddComponent(em, id, &testPositionComponent{X: float64(i)})
		if i%2 == 0 {
			AddComponent(em, id, &testLifetimeComponent{Remaining: 1})
		}
		ids = append(ids, id)
	}

	all := GetEntitiesWith1[*testPositionComponent](em)
	if len(all) != 20 {
		t.Fatalf("Expected 20 entities, got %d", len(all))
	}
	for i := range all {
		if all[i] != ids[i] {
			t.Fatalf("Expected ascending order, got %v", all)
		}
	}

	both := em.GetEntitiesWith(
		reflect.TypeOf(&testPositionComponent{}),
		reflect.TypeOf(&testLifetimeComponent{}),
	)
	if len(both) != 10 {
		t.Errorf("Expected 10 entities with both components, got %d", len(both))
	}
}

func TestRemoveComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	AddComponent(em, id, &testLifetimeComponent{Remaining: 3})

	em.RemoveComponent(id, reflect.TypeOf(&testLifetimeComponent{}))
	if _, ok := GetComponent[*testLifetimeComponent](em, id); ok {
		t.Error("Component should be removed")
	}
	if !em.Exists(id) {
		t.Error("Entity should survive component removal")
	}
}
