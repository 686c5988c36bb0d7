package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEphemeralCreateCleanup(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.Create(); err != nil {
		t.Fatalf("create: %v", err)
	}
	path := m.GetPath()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("workspace missing: %v", err)
	}
	if err := m.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected workspace removed, stat err=%v", err)
	}
}

func TestPersistentSurvivesCleanup(t *testing.T) {
	base := t.TempDir()
	m := NewPersistentManager(base, "working")
	if err := m.Create(); err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.GetPath() != filepath.Join(base, "working") {
		t.Fatalf("unexpected path %s", m.GetPath())
	}
	if err := m.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := os.Stat(m.GetPath()); err != nil {
		t.Fatalf("persistent workspace should survive cleanup: %v", err)
	}
}
