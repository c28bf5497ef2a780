package control

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/vietddude/fixer/internal/core/config"
	"github.com/vietddude/fixer/internal/core/domain"
	"github.com/vietddude/fixer/internal/probe"
)

func newTestApp(t *testing.T, cfg *config.AppConfig) *App {
	t.Helper()
	app, err := New(Config{App: cfg, Prober: probe.NewMemory()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { app.Stop(context.Background()) })
	return app
}

var branchDelete = domain.Invocation{
	Command:  "git branch -d feature",
	ExitCode: 1,
	Stderr:   "error: The branch 'feature' is not fully merged.",
}

func TestNew_AppliesRuleOverrides(t *testing.T) {
	cfg, err := config.Parse([]byte(`
rules:
  git_branch_delete:
    enabled: false
  ghost_rule:
    priority: 1
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	app := newTestApp(t, cfg)

	if !app.Registry().Frozen() {
		t.Error("registry should be frozen")
	}
	if _, ok := app.Registry().Get("git_branch_delete"); !ok {
		t.Fatal("git_branch_delete should still be registered")
	}
	for _, e := range app.Registry().Active() {
		if e.Rule.ID() == "git_branch_delete" {
			t.Error("git_branch_delete should be disabled")
		}
	}

	res, err := app.Correct(context.Background(), branchDelete, app.Options())
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	if res.Found() {
		t.Errorf("expected no corrections with the rule disabled, got %v", res.Corrections)
	}
}

func TestApp_CorrectWithoutStore(t *testing.T) {
	app := newTestApp(t, config.Default())
	if app.Store() != nil {
		t.Error("no store expected without redis url")
	}

	res, err := app.Correct(context.Background(), branchDelete, app.Options())
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	if len(res.Corrections) == 0 || res.Corrections[0].Command != "git branch -D feature" {
		t.Errorf("unexpected corrections: %v", res.Corrections)
	}

	if _, err := app.Correct(context.Background(), domain.Invocation{Command: "  "}, app.Options()); err == nil {
		t.Error("expected error for empty command")
	}
}

func TestApp_RecordsDiagnostics(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Redis.URL = "redis://" + mr.Addr()
	app := newTestApp(t, cfg)

	if app.Store() == nil {
		t.Fatal("expected a diagnostics store")
	}
	res, err := app.Correct(context.Background(), branchDelete, app.Options())
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}

	recent, err := app.Store().Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 || recent[0].RequestID != res.RequestID {
		t.Errorf("expected the request %s to be recorded, got %v", res.RequestID, recent)
	}
}

func TestNew_UnreachableStoreIsNotFatal(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.URL = "not-a-url"
	app := newTestApp(t, cfg)
	if app.Store() != nil {
		t.Error("store should be nil when the connection fails")
	}
}

func TestApp_StartStop(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 0
	app, err := New(Config{App: cfg, Prober: probe.NewMemory()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
