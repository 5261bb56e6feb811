package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadManifest(t *testing.T) {
	// Create a temporary directory with a kindling.toml
	dir := t.TempDir()
	tomlContent := `
[project]
name = "spawn-lobby"
owner = "Jeremaster"

[source]
dirs = ["src", "lines"]

[companion]
addr = "ws://localhost:9999/item"
protocol = "template"
pace = "100ms"

[output]
bundle = "out/lobby.kbundle"
history = ".kindling/history.db"

[compile]
permissive = true
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "spawn-lobby" {
		t.Errorf("project name = %q, want spawn-lobby", m.Project.Name)
	}
	if m.Project.Owner != "Jeremaster" {
		t.Errorf("project owner = %q, want Jeremaster", m.Project.Owner)
	}
	if len(m.Source.Dirs) != 2 {
		t.Errorf("source dirs count = %d, want 2", len(m.Source.Dirs))
	}
	if m.Companion.Addr != "ws://localhost:9999/item" {
		t.Errorf("companion addr = %q", m.Companion.Addr)
	}
	if m.Companion.Protocol != "template" {
		t.Errorf("companion protocol = %q, want template", m.Companion.Protocol)
	}
	if d, err := m.PaceDuration(); err != nil || d != 100*time.Millisecond {
		t.Errorf("pace = %v, %v, want 100ms", d, err)
	}
	if !m.Compile.Permissive {
		t.Error("compile permissive = false, want true")
	}
	if got := m.BundlePath(); got != filepath.Join(m.Dir, "out", "lobby.kbundle") {
		t.Errorf("BundlePath() = %q", got)
	}
	if got := m.HistoryPath(); got != filepath.Join(m.Dir, ".kindling", "history.db") {
		t.Errorf("HistoryPath() = %q", got)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "minimal"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Default source dir should be "src"
	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "src" {
		t.Errorf("default source dirs = %v, want [src]", m.Source.Dirs)
	}
	if m.Companion.Protocol != "nbt" {
		t.Errorf("default protocol = %q, want nbt", m.Companion.Protocol)
	}
	if d, _ := m.PaceDuration(); d != 0 {
		t.Errorf("default pace = %v, want 0", d)
	}
	if m.HistoryPath() != "" || m.BundlePath() != "" {
		t.Error("outputs should be disabled by default")
	}
}

func TestLoadManifestBadPace(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[companion]\npace = \"soon\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected error for invalid pace")
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	tomlContent := `[project]
name = "found-project"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no kindling.toml exists")
	}
}

func TestSourceDirPaths(t *testing.T) {
	m := &Manifest{
		Dir: "/app",
		Source: Source{
			Dirs: []string{"src", "lib"},
		},
	}

	paths := m.SourceDirPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if paths[0] != "/app/src" {
		t.Errorf("paths[0] = %q, want /app/src", paths[0])
	}
	if paths[1] != "/app/lib" {
		t.Errorf("paths[1] = %q, want /app/lib", paths[1])
	}
}
