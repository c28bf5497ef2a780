package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vietddude/fixer/internal/core/domain"
)

func TestFS_Stat(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "run.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	p := NewFS()
	ctx := context.Background()

	info, err := p.Stat(ctx, script)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.Exists || info.IsDir || info.Executable {
		t.Errorf("unexpected info for script: %+v", info)
	}

	info, err = p.Stat(ctx, filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatalf("Stat on missing path returned error: %v", err)
	}
	if info.Exists {
		t.Error("missing path reported as existing")
	}

	info, _ = p.Stat(ctx, dir)
	if !info.IsDir {
		t.Error("temp dir not reported as directory")
	}
}

func TestFS_ListDirAndCommands(t *testing.T) {
	dir := t.TempDir()
	_ = os.Mkdir(filepath.Join(dir, "local"), 0o755)
	_ = os.Mkdir(filepath.Join(dir, "share"), 0o755)
	_ = os.WriteFile(filepath.Join(dir, "tool"), []byte("x"), 0o755)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	p := NewFS()
	entries, err := p.ListDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("ListDir failed: %v", err)
	}
	dirs := Names(entries, true)
	if len(dirs) != 2 || dirs[0] != "local" || dirs[1] != "share" {
		t.Errorf("unexpected dirs: %v", dirs)
	}

	cmds, err := p.Commands(context.Background(), dir)
	if err != nil {
		t.Fatalf("Commands failed: %v", err)
	}
	if len(cmds) != 1 || cmds[0] != "tool" {
		t.Errorf("unexpected commands: %v", cmds)
	}
}

func TestRun_HonorsDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := run(ctx, func() (int, error) {
		<-release
		return 1, nil
	})

	if !errors.Is(err, domain.ErrProbeTimeout) {
		t.Fatalf("expected ErrProbeTimeout, got %v", err)
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Errorf("run did not return promptly: %v", time.Since(start))
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory().
		AddDir("/usr/local").
		AddDir("/usr/share").
		AddFile("/usr/bin/git", true)

	ctx := context.Background()
	entries, _ := m.ListDir(ctx, "/usr")
	names := Names(entries, true)
	if len(names) != 3 || names[0] != "bin" || names[1] != "local" || names[2] != "share" {
		t.Errorf("unexpected listing: %v (%s)", names, m)
	}

	info, _ := m.Stat(ctx, "/usr/bin/git")
	if !info.Exists || !info.Executable {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestVisible(t *testing.T) {
	names := []string{".git", "src", ".cache"}
	if got := Visible(names, "sr"); len(got) != 1 || got[0] != "src" {
		t.Errorf("Visible dropped wrong entries: %v", got)
	}
	if got := Visible(names, ".gi"); len(got) != 3 {
		t.Errorf("dot query should keep dot entries: %v", got)
	}
}
