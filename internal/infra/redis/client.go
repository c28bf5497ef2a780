package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultDialTimeout keeps a missing Redis from slowing down every correction.
const defaultDialTimeout = 500 * time.Millisecond

// Client wraps the Redis connection used for diagnostics.
type Client struct {
	rdb  *redis.Client
	keys keyspace
}

// Config holds Redis connection configuration.
type Config struct {
	URL         string        `yaml:"url"`
	Password    string        `yaml:"password"`
	Prefix      string        `yaml:"prefix"` // key prefix, default "fixer"
	DialTimeout time.Duration `yaml:"dial_timeout"`
	MaxEntries  int           `yaml:"max_entries"`
	TTL         time.Duration `yaml:"ttl"`
}

// Enabled reports whether a Redis URL is configured.
func (c Config) Enabled() bool { return c.URL != "" }

// NewClient connects to Redis and verifies the connection within the dial
// timeout.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	opts.DialTimeout = timeout
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout
	opts.MaxRetries = 1

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "fixer"
	}
	return &Client{rdb: rdb, keys: keyspace(prefix)}, nil
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// keyspace builds the keys under one prefix.
type keyspace string

func (k keyspace) recent() string {
	return string(k) + ":diagnostics"
}

func (k keyspace) record(requestID string) string {
	return fmt.Sprintf("%s:diagnostic:%s", k, requestID)
}

func (k keyspace) records() string {
	return string(k) + ":diagnostic:*"
}
