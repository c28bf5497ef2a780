package control

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/fixer/internal/core/config"
	"github.com/vietddude/fixer/internal/core/domain"
	"github.com/vietddude/fixer/internal/engine"
	redisclient "github.com/vietddude/fixer/internal/infra/redis"
	"github.com/vietddude/fixer/internal/metrics"
	"github.com/vietddude/fixer/internal/probe"
	"github.com/vietddude/fixer/internal/rule"
	"github.com/vietddude/fixer/internal/rules"
	"github.com/vietddude/fixer/internal/server"
)

// recordTimeout bounds a diagnostics write made after answering.
const recordTimeout = 250 * time.Millisecond

// App owns the rule registry, the engine and the optional backends.
type App struct {
	cfg         *config.AppConfig
	registry    *rule.Registry
	engine      *engine.Engine
	redisClient *redisclient.Client
	store       *redisclient.ReportStore
	server      *server.Server
	log         *slog.Logger
}

// Config holds what New needs to assemble an App.
type Config struct {
	App    *config.AppConfig
	Prober probe.Prober // defaults to the real filesystem
	Logger *slog.Logger
	// Extra rules are registered after the built-in packs.
	Extra []rule.Rule
}

// New builds and freezes the registry, applies the per-rule configuration
// and connects the diagnostics store when one is configured.
func New(cfg Config) (*App, error) {
	if cfg.App == nil {
		cfg.App = config.Default()
	}
	if cfg.Prober == nil {
		cfg.Prober = probe.NewFS()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	// 1. Registry
	reg := rule.NewRegistry()
	if err := rules.Load(reg, cfg.Prober); err != nil {
		return nil, err
	}
	if len(cfg.Extra) > 0 {
		if err := reg.Register(cfg.Extra...); err != nil {
			return nil, err
		}
	}
	if err := cfg.App.Apply(reg); err != nil {
		// Unknown ids in the config are not fatal
		log.Warn("Ignoring rule overrides", "error", err)
	}
	reg.Freeze()

	active := len(reg.Active())
	metrics.RegisteredRules.WithLabelValues("enabled").Set(float64(active))
	metrics.RegisteredRules.WithLabelValues("disabled").Set(float64(reg.Len() - active))
	log.Debug("Rule registry ready", "rules", reg.Len(), "active", active)

	app := &App{
		cfg:      cfg.App,
		registry: reg,
		engine:   engine.New(reg, engine.WithLogger(log.With("component", "engine"))),
		log:      log,
	}

	// 2. Diagnostics store
	if cfg.App.Redis.Enabled() {
		client, err := redisclient.NewClient(cfg.App.Redis)
		if err != nil {
			log.Warn("Diagnostics store unavailable", "error", err)
		} else {
			app.redisClient = client
			app.store = redisclient.NewReportStore(client, cfg.App.Redis)
		}
	}

	return app, nil
}

// Registry returns the frozen registry.
func (a *App) Registry() *rule.Registry { return a.registry }

// Engine returns the shared engine.
func (a *App) Engine() *engine.Engine { return a.engine }

// Store returns the diagnostics store, or nil when none is connected.
func (a *App) Store() *redisclient.ReportStore { return a.store }

// Options returns the configured request bounds.
func (a *App) Options() engine.Options { return a.cfg.EngineOptions() }

// Correct runs one request and records its trace. A diagnostics failure is
// logged, never returned.
func (a *App) Correct(ctx context.Context, inv domain.Invocation, opts engine.Options) (engine.Result, error) {
	fc, err := domain.NewFailureContext(inv)
	if err != nil {
		return engine.Result{}, err
	}
	res := a.engine.Correct(ctx, fc, opts)

	if a.store != nil {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()
		if err := a.store.Record(rctx, res.Diagnostic(fc, time.Now())); err != nil {
			a.log.Warn("Failed to record diagnostic", "request_id", res.RequestID, "error", err)
		}
	}
	return res, nil
}

// Start starts the HTTP daemon in the background.
func (a *App) Start(ctx context.Context) error {
	srvCfg := server.Config{
		Port:     a.cfg.Server.Port,
		Engine:   a.engine,
		Registry: a.registry,
		Options:  a.Options(),
		Logger:   a.log,
	}
	if a.store != nil {
		srvCfg.Recorder = a.store
		srvCfg.Pinger = a.redisClient
	}
	a.server = server.NewServer(srvCfg)

	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Daemon failed", "error", err)
		}
	}()
	return nil
}

// Stop stops the daemon, if running, and closes the backends.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping fixer...")

	var err error
	if a.server != nil {
		err = a.server.Stop(ctx)
	}

	// Close Redis
	if a.redisClient != nil {
		if cerr := a.redisClient.Close(); cerr != nil {
			a.log.Warn("Failed to close Redis", "error", cerr)
		}
	}
	return err
}
