package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/fixer/internal/core/domain"
	"github.com/vietddude/fixer/internal/engine"
	"github.com/vietddude/fixer/internal/rule"
)

// DefaultPath returns $XDG_CONFIG_HOME/fixer/config.yaml or its platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "fixer", "config.yaml"), nil
}

// Default returns the configuration used when no file exists.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML content, expanding environment variables first.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	cfg.Engine = cfg.Engine.WithDefaults()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Redis.MaxEntries == 0 {
		cfg.Redis.MaxEntries = 500
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 7 * 24 * time.Hour
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "fixer"
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 500 * time.Millisecond
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]RuleConfig{}
	}
}

// Validate reports every out-of-range value at once.
func (c *AppConfig) Validate() error {
	var problems []string
	e := c.Engine
	if e.MaxResults < 0 {
		problems = append(problems, "engine.max_results must not be negative")
	}
	if e.PerRuleTimeout < 0 || e.OverallTimeout < 0 {
		problems = append(problems, "engine timeouts must not be negative")
	}
	if e.PerRuleTimeout > 0 && e.OverallTimeout > 0 && e.PerRuleTimeout > e.OverallTimeout {
		problems = append(problems, "engine.per_rule_timeout exceeds engine.overall_timeout")
	}
	if math.IsNaN(e.MinFuzzyThreshold) || e.MinFuzzyThreshold < 0 || e.MinFuzzyThreshold > 1 {
		problems = append(problems, "engine.min_fuzzy_threshold must be within [0, 1]")
	}
	if e.Workers < 0 {
		problems = append(problems, "engine.workers must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown logging.level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("unknown logging.format %q", c.Logging.Format))
	}
	if c.Redis.MaxEntries < 0 || c.Redis.TTL < 0 || c.Redis.DialTimeout < 0 {
		problems = append(problems, "redis.max_entries, redis.ttl and redis.dial_timeout must not be negative")
	}

	if len(problems) > 0 {
		return domain.ErrConfigInvalid.Wrap(strings.Join(problems, "; "))
	}
	return nil
}

// Apply pushes the per-rule overrides into reg. Ids are applied in sorted
// order; unknown ids are reported together after the known ones are applied.
func (c *AppConfig) Apply(reg *rule.Registry) error {
	ids := make([]string, 0, len(c.Rules))
	for id := range c.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []error
	for _, id := range ids {
		if err := reg.Configure(id, c.Rules[id].Override()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EngineOptions returns the request bounds with defaults filled in.
func (c *AppConfig) EngineOptions() engine.Options {
	return c.Engine.WithDefaults()
}

// Example returns a documented sample configuration.
func Example() string {
	return `# fixer configuration

# Prompt for a choice when several corrections are available.
interactive: true

engine:
  max_results: 10
  per_rule_timeout: 50ms
  overall_timeout: 100ms
  min_fuzzy_threshold: 0.6
  # 0 uses one worker per CPU
  workers: 0

# Override rules by id. Lower priority wins.
rules:
  git_branch_delete:
    enabled: false
  git_push_set_upstream:
    priority: 300
  mkdir_parents:
    enabled: true
    priority: 150

logging:
  level: info
  format: text

server:
  port: 8080

# Optional diagnostics store; leave url empty to disable.
redis:
  url: ${FIXER_REDIS_URL}
  password: ""
  prefix: fixer
  dial_timeout: 500ms
  max_entries: 500
  ttl: 168h
`
}
