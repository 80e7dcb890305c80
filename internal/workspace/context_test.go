package workspace

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_StableID(t *testing.T) {
	ws := New("acme-deal", t.TempDir())
	if !strings.HasPrefix(ws.ID, "ws_") {
		t.Errorf("expected ws_ prefix, got %s", ws.ID)
	}
	if ws.Name != "acme-deal" {
		t.Errorf("expected name=acme-deal, got %s", ws.Name)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	root := t.TempDir()
	ws := New("acme-deal", root)
	if err := ws.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ID != ws.ID {
		t.Errorf("expected ID %s, got %s", ws.ID, loaded.ID)
	}
	if loaded.Root != root {
		t.Errorf("expected root %s, got %s", root, loaded.Root)
	}
}

func TestLoadOrCreate_Idempotent(t *testing.T) {
	root := t.TempDir()
	first, err := LoadOrCreate("acme-deal", root)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	second, err := LoadOrCreate("ignored-name", root)
	if err != nil {
		t.Fatalf("second LoadOrCreate failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same workspace ID on reload, got %s vs %s", first.ID, second.ID)
	}
}

func TestDerivedPaths(t *testing.T) {
	root := t.TempDir()
	ws := New("acme-deal", root)
	if ws.DBPath() != filepath.Join(root, ".groundwork", "memory.db") {
		t.Errorf("unexpected db path: %s", ws.DBPath())
	}
	if !strings.HasPrefix(ws.RunsDir(), root) {
		t.Errorf("runs dir should derive from root: %s", ws.RunsDir())
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error loading workspace from empty root")
	}
}
