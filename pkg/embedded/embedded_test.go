package embedded

import (
	"errors"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/arena.yaml":         {Data: []byte("center: {x: 1, y: 2}\n")},
		"data/wave_tunables.yaml": {Data: []byte("difficulty: {}\n")},
	}
}

// reset 重置包状态，避免测试之间相互影响
func reset() {
	dataFS = nil
	initialized = false
}

// TestIsInitialized 测试初始化状态检测
func TestIsInitialized(t *testing.T) {
	reset()
	defer reset()

	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}

	Init(testFS())
	if !IsInitialized() {
		t.Error("Expected IsInitialized() to return true after Init()")
	}

	Init(nil)
	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false after Init(nil)")
	}
}

// TestReadFileNotInitialized 测试未初始化时调用 ReadFile
func TestReadFileNotInitialized(t *testing.T) {
	reset()

	_, err := ReadFile("data/arena.yaml")
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if Exists("data/arena.yaml") {
		t.Error("Exists() should be false before Init()")
	}
}

// TestReadFile 测试读取和路径标准化
func TestReadFile(t *testing.T) {
	reset()
	defer reset()
	Init(testFS())

	for _, path := range []string{"data/arena.yaml", "./data/arena.yaml"} {
		data, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%q) error: %v", path, err)
		}
		if string(data) != "center: {x: 1, y: 2}\n" {
			t.Errorf("ReadFile(%q) = %q", path, data)
		}
	}

	if _, err := ReadFile("assets/arena.yaml"); err == nil {
		t.Error("Expected error for unknown path prefix")
	}
	if _, err := ReadFile("data/missing.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

// TestReadDir 测试目录读取
func TestReadDir(t *testing.T) {
	reset()
	defer reset()
	Init(testFS())

	for _, path := range []string{"data", "data/"} {
		entries, err := ReadDir(path)
		if err != nil {
			t.Fatalf("ReadDir(%q) error: %v", path, err)
		}
		if len(entries) != 2 {
			t.Errorf("ReadDir(%q) returned %d entries, want 2", path, len(entries))
		}
	}

	if _, err := ReadDir("assets"); err == nil {
		t.Error("Expected error for unknown path prefix")
	}
}
