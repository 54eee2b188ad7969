package logger

import "testing"

func TestInitLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if err := Init(level); err != nil {
			t.Errorf("Init(%q) failed: %v", level, err)
		}
	}
}

func TestInitInvalidLevel(t *testing.T) {
	if err := Init("verbose"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestGetNeverNil(t *testing.T) {
	if Get() == nil {
		t.Error("Get must not return nil")
	}
}
