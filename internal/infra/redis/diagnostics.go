package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/fixer/internal/core/domain"
)

// ReportStore keeps a capped, expiring history of evaluation traces.
type ReportStore struct {
	rdb        *redis.Client
	keys       keyspace
	maxEntries int64
	ttl        time.Duration
}

// NewReportStore creates a Redis-backed diagnostics store.
func NewReportStore(client *Client, cfg Config) *ReportStore {
	limit := int64(cfg.MaxEntries)
	if limit <= 0 {
		limit = 500
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &ReportStore{rdb: client.rdb, keys: client.keys, maxEntries: limit, ttl: ttl}
}

// Record stores d as the newest entry and trims the history.
func (s *ReportStore) Record(ctx context.Context, d domain.Diagnostic) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostic: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		recent := s.keys.recent()
		pipe.LPush(ctx, recent, data)
		pipe.LTrim(ctx, recent, 0, s.maxEntries-1)
		pipe.Expire(ctx, recent, s.ttl)
		pipe.Set(ctx, s.keys.record(d.RequestID), data, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record diagnostic: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *ReportStore) Recent(ctx context.Context, n int) ([]domain.Diagnostic, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := s.rdb.LRange(ctx, s.keys.recent(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange failed: %w", err)
	}

	out := make([]domain.Diagnostic, 0, len(raw))
	for _, r := range raw {
		var d domain.Diagnostic
		if err := json.Unmarshal([]byte(r), &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal diagnostic: %w", err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Get looks up one trace by request id. found is false when it expired or
// never existed.
func (s *ReportStore) Get(ctx context.Context, requestID string) (d domain.Diagnostic, found bool, err error) {
	data, err := s.rdb.Get(ctx, s.keys.record(requestID)).Bytes()
	if err == redis.Nil {
		return d, false, nil
	}
	if err != nil {
		return d, false, fmt.Errorf("get failed: %w", err)
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, false, fmt.Errorf("failed to unmarshal diagnostic: %w", err)
	}
	return d, true, nil
}

// Clear drops the history list and every per-request record.
func (s *ReportStore) Clear(ctx context.Context) error {
	keys := []string{s.keys.recent()}
	iter := s.rdb.Scan(ctx, 0, s.keys.records(), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	return s.rdb.Del(ctx, keys...).Err()
}
