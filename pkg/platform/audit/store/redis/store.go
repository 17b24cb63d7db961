// Package redis appends audit records to a Redis Stream.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "storefront:audit"

const recordField = "record"

// Store implements audit.Store and audit.Reader on a Redis Stream.
// Stream entries are append-only; the optional MaxLen trims the oldest
// entries approximately, for deployments that ship the stream elsewhere.
type Store struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// Option configures a Store.
type Option func(*Store)

// WithStream sets the stream key.
func WithStream(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.stream = key
		}
	}
}

// WithMaxLen caps the stream length. Zero keeps everything.
func WithMaxLen(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxLen = n
		}
	}
}

// New creates a Redis Stream audit store.
func New(client redis.Cmdable, opts ...Option) *Store {
	s := &Store{
		client: client,
		stream: DefaultStream,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append adds record to the stream.
func (s *Store) Append(ctx context.Context, record audit.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{recordField: payload},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd audit record: %w", err)
	}
	return nil
}

// ListRecent returns the N most recent records, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Record, error) {
	msgs, err := s.client.XRevRangeN(ctx, s.stream, "+", "-", int64(limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("xrevrange audit stream: %w", err)
	}
	records := make([]audit.Record, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values[recordField].(string)
		if !ok {
			return nil, fmt.Errorf("stream entry %s has no %q field", msg.ID, recordField)
		}
		var rec audit.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode stream entry %s: %w", msg.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
