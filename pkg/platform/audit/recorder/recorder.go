// Package recorder writes audit entries on a best-effort basis.
//
// Recording never fails the caller. Serialization errors, store errors, an
// open circuit and panics raised by the store are all absorbed here: they are
// logged and counted, and the business operation carries on. Entries are
// written synchronously, in call order.
package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/circuit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/sentinel"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/requestcontext"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500

	// DefaultAppendTimeout bounds a single store write. The write is detached
	// from the caller's cancellation, so this is its only deadline.
	DefaultAppendTimeout = 5 * time.Second
)

// Recorder persists audit entries through an audit.Store.
type Recorder struct {
	store   audit.Store
	reader  audit.Reader
	logger  *slog.Logger
	metrics *Metrics
	breaker *circuit.Breaker
	tracer  trace.Tracer
	timeout time.Duration
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Recorder) {
		r.breaker = b
	}
}

// WithAppendTimeout overrides DefaultAppendTimeout.
func WithAppendTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithReader sets the reader used by Recent. Stores implementing
// audit.Reader are picked up automatically.
func WithReader(reader audit.Reader) Option {
	return func(r *Recorder) {
		r.reader = reader
	}
}

// New creates a Recorder over store.
func New(store audit.Store, opts ...Option) (*Recorder, error) {
	if store == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	r := &Recorder{
		store:   store,
		logger:  slog.Default(),
		breaker: circuit.New("audit-store"),
		tracer:  otel.Tracer("storefront/audit"),
		timeout: DefaultAppendTimeout,
	}
	if reader, ok := store.(audit.Reader); ok {
		r.reader = reader
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Record persists entry. It never returns an error and never panics.
func (r *Recorder) Record(ctx context.Context, entry audit.Entry) {
	ctx, span := r.tracer.Start(ctx, "audit.record",
		trace.WithAttributes(
			attribute.String("audit.action", entry.Action),
			attribute.String("audit.resource", entry.Resource),
		),
	)
	defer span.End()

	if err := r.persist(ctx, entry); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "audit entry dropped")
	}
}

// RecordSecurityEvent persists ev as a SECURITY_EVENT_<KIND> entry.
func (r *Recorder) RecordSecurityEvent(ctx context.Context, ev audit.SecurityEvent) {
	r.Record(ctx, ev.ToEntry())
}

// Recent returns up to limit records, newest first. A limit outside
// 1..500 falls back to the default of 50.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]audit.Record, error) {
	if r.reader == nil {
		return nil, fmt.Errorf("audit store does not support listing: %w", sentinel.ErrUnavailable)
	}
	if limit <= 0 || limit > maxRecentLimit {
		limit = defaultRecentLimit
	}
	return r.reader.ListRecent(ctx, limit)
}

// persist is the recover boundary: every failure becomes the returned error,
// which Record discards after logging. The store write outlives the caller's
// context; a client hanging up does not erase the entry.
func (r *Recorder) persist(ctx context.Context, entry audit.Entry) (err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("audit store panic: %v", p)
			r.drop(ctx, entry, reasonPanic, err)
			r.recordBreakerFailure(ctx)
		}
	}()

	record, err := BuildRecord(ctx, entry)
	if err != nil {
		r.drop(ctx, entry, reasonSerialize, err)
		return err
	}

	if !r.breaker.Allow() {
		err = fmt.Errorf("audit store: %w", sentinel.ErrCircuitOpen)
		r.drop(ctx, entry, reasonCircuitOpen, err)
		return err
	}

	start := time.Now()
	if err = r.store.Append(ctx, record); err != nil {
		r.drop(ctx, entry, reasonStore, err)
		r.recordBreakerFailure(ctx)
		return err
	}
	r.metrics.incRecorded(time.Since(start).Seconds())

	if _, change := r.breaker.RecordSuccess(); change.Closed {
		r.metrics.setCircuitBreakerState(false)
		r.logger.InfoContext(ctx, "audit store recovered; circuit closed")
	}
	return nil
}

func (r *Recorder) recordBreakerFailure(ctx context.Context) {
	if _, change := r.breaker.RecordFailure(); change.Opened {
		r.metrics.setCircuitBreakerState(true)
		r.logger.WarnContext(ctx, "audit store failing; circuit opened", "breaker", r.breaker.Name())
	}
}

func (r *Recorder) drop(ctx context.Context, entry audit.Entry, reason string, err error) {
	r.metrics.incDropped(reason)
	r.logger.ErrorContext(ctx, "audit entry not persisted",
		"action", entry.Action,
		"resource", entry.Resource,
		"resource_id", entry.ResourceID,
		"outcome", entry.Outcome,
		"reason", reason,
		"error", err,
	)
}

// BuildRecord fills defaults from the request context and serializes the
// change payload. Explicit entry values win over context values.
func BuildRecord(ctx context.Context, entry audit.Entry) (audit.Record, error) {
	changes, err := serializeChanges(entry.Changes)
	if err != nil {
		return audit.Record{}, err
	}

	record := audit.Record{
		ID:            entry.ID,
		ActorID:       entry.ActorID,
		Action:        entry.Action,
		Resource:      entry.Resource,
		ResourceID:    entry.ResourceID,
		SourceAddress: SourceAddress(ctx, entry.SourceAddress),
		UserAgent:     entry.UserAgent,
		Changes:       changes,
		Outcome:       entry.Outcome,
		ErrorDetail:   entry.ErrorDetail,
		RequestID:     entry.RequestID,
		Timestamp:     entry.Timestamp,
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.ActorID == "" {
		record.ActorID = requestcontext.ActorID(ctx)
	}
	if record.UserAgent == "" {
		record.UserAgent = requestcontext.UserAgent(ctx)
	}
	if record.RequestID == "" {
		record.RequestID = requestcontext.RequestID(ctx)
	}
	if record.Outcome == "" {
		record.Outcome = audit.OutcomeSuccess
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = requestcontext.Now(ctx)
	}
	return record, nil
}

// serializeChanges returns nil for an absent payload. Empty payloads
// serialize to their empty JSON form and stay distinct from absent.
func serializeChanges(changes any) (*string, error) {
	if changes == nil {
		return nil, nil
	}
	if raw, ok := changes.(json.RawMessage); ok {
		s := string(raw)
		return &s, nil
	}
	b, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("serialize audit changes: %w", err)
	}
	if string(b) == "null" {
		return nil, nil
	}
	s := string(b)
	return &s, nil
}
