// Package monitor classifies security events and escalates the serious ones.
//
// Every evaluated event is first written to the audit trail. Events of kind
// ADMIN_ACCESS_DENIED and MULTIPLE_FAILED_LOGINS are then escalated as an
// Alert through the configured Dispatcher; the other kinds are recorded only.
// Detection (thresholds, counting) happens upstream: the monitor only
// classifies what it is given.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit/recorder"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/requestcontext"
)

// DefaultDispatchTimeout bounds alert delivery. Delivery is detached from
// the caller's cancellation.
const DefaultDispatchTimeout = 10 * time.Second

// Severity is the escalation level of a security event.
type Severity string

const (
	SeverityHigh Severity = "HIGH"
	SeverityLow  Severity = "LOW"
)

// SeverityFor classifies a security event kind. Unknown kinds are LOW.
func SeverityFor(kind audit.EventKind) Severity {
	switch kind {
	case audit.KindAdminAccessDenied, audit.KindMultipleFailedLogins:
		return SeverityHigh
	default:
		return SeverityLow
	}
}

// Alert is the notification emitted for escalated events.
type Alert struct {
	Severity      Severity        `json:"severity"`
	Kind          audit.EventKind `json:"kind"`
	ActorID       string          `json:"actorId,omitempty"`
	SourceAddress string          `json:"sourceAddress"`
	Details       map[string]any  `json:"details,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Dispatcher delivers alerts to an operator channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert Alert) error
}

// SecurityRecorder persists security events to the audit trail.
type SecurityRecorder interface {
	RecordSecurityEvent(ctx context.Context, ev audit.SecurityEvent)
}

// Monitor evaluates security events. Safe for concurrent use.
type Monitor struct {
	recorder   SecurityRecorder
	dispatcher Dispatcher
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer

	dispatchTimeout time.Duration
}

// Option configures the Monitor.
type Option func(*Monitor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Monitor) {
		m.metrics = metrics
	}
}

// WithDispatchTimeout overrides DefaultDispatchTimeout.
func WithDispatchTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.dispatchTimeout = d
		}
	}
}

// New creates a Monitor.
func New(rec SecurityRecorder, dispatcher Dispatcher, opts ...Option) (*Monitor, error) {
	if rec == nil {
		return nil, fmt.Errorf("security recorder is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("alert dispatcher is required")
	}
	m := &Monitor{
		recorder:   rec,
		dispatcher: dispatcher,
		logger:     slog.Default(),
		tracer:     otel.Tracer("storefront/monitor"),

		dispatchTimeout: DefaultDispatchTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Evaluate records ev and escalates it when its severity is HIGH.
// Dispatch failures are logged and counted; they never affect the caller
// or the audit write.
func (m *Monitor) Evaluate(ctx context.Context, ev audit.SecurityEvent) {
	severity := SeverityFor(ev.Kind)
	ctx, span := m.tracer.Start(ctx, "monitor.evaluate",
		trace.WithAttributes(
			attribute.String("security.kind", string(ev.Kind)),
			attribute.String("security.severity", string(severity)),
		),
	)
	defer span.End()

	m.recorder.RecordSecurityEvent(ctx, ev)
	m.metrics.incEvaluated(ev.Kind, severity)

	if severity != SeverityHigh {
		return
	}

	alert := m.buildAlert(ctx, ev, severity)
	if err := m.dispatch(ctx, alert); err != nil {
		m.metrics.incDispatchFailures(ev.Kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, "alert dispatch failed")
		m.logger.ErrorContext(ctx, "security alert dispatch failed",
			"kind", ev.Kind,
			"severity", severity,
			"source_address", alert.SourceAddress,
			"error", err,
		)
		return
	}
	m.metrics.incDispatched(ev.Kind)
}

func (m *Monitor) dispatch(ctx context.Context, alert Alert) (err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.dispatchTimeout)
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("alert dispatcher panic: %v", p)
		}
	}()
	return m.dispatcher.Dispatch(ctx, alert)
}

func (m *Monitor) buildAlert(ctx context.Context, ev audit.SecurityEvent, severity Severity) Alert {
	details := maps.Clone(ev.Details)
	ua := ev.UserAgent
	if ua == "" {
		ua = requestcontext.UserAgent(ctx)
	}
	if client := describeClient(ua); client != nil {
		if details == nil {
			details = make(map[string]any, 1)
		}
		details["client"] = client
	}

	actor := ev.ActorID
	if actor == "" {
		actor = requestcontext.ActorID(ctx)
	}

	return Alert{
		Severity:      severity,
		Kind:          ev.Kind,
		ActorID:       actor,
		SourceAddress: recorder.SourceAddress(ctx, ev.SourceAddress),
		Details:       details,
		Timestamp:     requestcontext.Now(ctx),
	}
}
