package rule

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/fixer/internal/core/domain"
	"github.com/vietddude/fixer/internal/probe"
)

func TestComposite_GuardAndBuild(t *testing.T) {
	fs := probe.NewMemory().AddFile("/work/run.sh", false)

	r, err := NewComposite(CompositeSpec{
		ID:             "chmod_execute",
		RequiresOutput: true,
		Match: func(fc *domain.FailureContext) bool {
			return fc.Program() == "./run.sh"
		},
		Guard: func(ctx context.Context, fc *domain.FailureContext) (bool, error) {
			info, err := fs.Stat(ctx, fc.Resolve("run.sh"))
			if err != nil {
				return false, err
			}
			return info.Exists && !info.Executable, nil
		},
		Build: func(_ context.Context, fc *domain.FailureContext) ([]string, error) {
			return []string{"chmod +x run.sh && " + fc.RawCommand()}, nil
		},
	})
	if err != nil {
		t.Fatalf("NewComposite failed: %v", err)
	}

	fc := mustContext(t, domain.Invocation{Command: "./run.sh", ExitCode: 126, Stderr: "permission denied", WorkingDir: "/work"})
	if !r.Matches(fc) {
		t.Fatal("expected match")
	}
	got, err := r.Generate(context.Background(), fc)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(got) != 1 || got[0].Command != "chmod +x run.sh && ./run.sh" {
		t.Fatalf("unexpected corrections: %v", commands(got))
	}
	if got[0].Confidence != domain.ConfidenceComposite {
		t.Errorf("expected confidence %v, got %v", domain.ConfidenceComposite, got[0].Confidence)
	}

	fs.AddFile("/work/run.sh", true)
	got, _ = r.Generate(context.Background(), fc)
	if len(got) != 0 {
		t.Errorf("guard should block an executable file, got %v", commands(got))
	}
}

func TestComposite_RetagsChildren(t *testing.T) {
	child, _ := NewLiteral(LiteralSpec{ID: "child", Priority: 1, CommandPrefix: "git ", Old: "brnch", New: "branch"})
	r, err := NewComposite(CompositeSpec{ID: "parent", Priority: 7, Children: []Rule{child}})
	if err != nil {
		t.Fatalf("NewComposite failed: %v", err)
	}

	fc := mustContext(t, domain.Invocation{Command: "git brnch"})
	if !r.Matches(fc) {
		t.Fatal("child match should make the composite match")
	}
	got, _ := r.Generate(context.Background(), fc)
	if len(got) != 1 {
		t.Fatalf("expected 1 correction, got %d", len(got))
	}
	if got[0].RuleID != "parent" || got[0].Priority != 7 {
		t.Errorf("expected parent tags, got %+v", got[0])
	}
	if got[0].Confidence != 1.0 {
		t.Errorf("child confidence should be kept, got %v", got[0].Confidence)
	}
}

func TestComposite_GuardError(t *testing.T) {
	boom := errors.New("probe failed")
	r, _ := NewComposite(CompositeSpec{
		ID:    "x",
		Match: func(*domain.FailureContext) bool { return true },
		Guard: func(context.Context, *domain.FailureContext) (bool, error) { return false, boom },
		Build: func(context.Context, *domain.FailureContext) ([]string, error) { return []string{"y"}, nil },
	})
	fc := mustContext(t, domain.Invocation{Command: "x"})
	if _, err := r.Generate(context.Background(), fc); !errors.Is(err, boom) {
		t.Errorf("expected guard error, got %v", err)
	}
}

func TestComposite_StopsWhenCanceled(t *testing.T) {
	built := false
	r, _ := NewComposite(CompositeSpec{
		ID:    "x",
		Match: func(*domain.FailureContext) bool { return true },
		Build: func(context.Context, *domain.FailureContext) ([]string, error) {
			built = true
			return []string{"y"}, nil
		},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fc := mustContext(t, domain.Invocation{Command: "x"})
	if _, err := r.Generate(ctx, fc); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if built {
		t.Error("build should not run after cancellation")
	}
}

func TestNewComposite_Invalid(t *testing.T) {
	if _, err := NewComposite(CompositeSpec{ID: "x"}); !errors.Is(err, domain.ErrInvalidRule) {
		t.Errorf("expected ErrInvalidRule, got %v", err)
	}
	if _, err := NewComposite(CompositeSpec{ID: "x", Match: func(*domain.FailureContext) bool { return true }}); !errors.Is(err, domain.ErrInvalidRule) {
		t.Errorf("expected ErrInvalidRule without a build step, got %v", err)
	}
}
