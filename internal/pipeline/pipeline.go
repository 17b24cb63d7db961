// Package pipeline composes validation, field encryption and audit recording
// into the write and read paths used by storefront handlers.
//
// Handlers own persistence; the pipeline hands them a validated, encrypted
// copy of the payload and records the outcome. Audit recording never fails
// the caller. Validation and configuration errors are returned unchanged.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	dErrors "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/domain-errors"
	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/validation"
)

// Encryptor protects sensitive fields of a record.
type Encryptor interface {
	EncryptSensitive(record map[string]any) (map[string]any, error)
	DecryptSensitive(ctx context.Context, record map[string]any) (map[string]any, error)
}

// AuditRecorder records audit entries on a best-effort basis.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// PersistFunc stores an encrypted record and returns its identifier.
type PersistFunc func(ctx context.Context, record map[string]any) (string, error)

// WriteRequest describes one create or update of a resource.
type WriteRequest struct {
	Resource   validation.ResourceType
	Action     string // e.g. "CREATE", "UPDATE"
	ResourceID string // known ID for updates; empty for creates
	Payload    map[string]any
	Persist    PersistFunc
}

// WriteResult is the outcome of a successful write.
type WriteResult struct {
	ResourceID string
	// Stored is the record as handed to Persist, sensitive fields encrypted.
	Stored map[string]any
}

// ReadRequest describes a read of a previously stored record.
type ReadRequest struct {
	Resource   string
	ResourceID string
	Stored     map[string]any
}

// Pipeline runs storefront payloads through validation, encryption and audit.
type Pipeline struct {
	encryptor Encryptor
	recorder  AuditRecorder
	metrics   *validation.Metrics
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithValidationMetrics counts rejected payloads.
func WithValidationMetrics(m *validation.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New creates a Pipeline.
func New(encryptor Encryptor, recorder AuditRecorder, opts ...Option) (*Pipeline, error) {
	if encryptor == nil {
		return nil, errors.New("encryptor is required")
	}
	if recorder == nil {
		return nil, errors.New("audit recorder is required")
	}
	p := &Pipeline{
		encryptor: encryptor,
		recorder:  recorder,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Write validates req.Payload, encrypts its sensitive fields, persists it
// through req.Persist and records the outcome.
func (p *Pipeline) Write(ctx context.Context, req WriteRequest) (*WriteResult, error) {
	if req.Persist == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "persist func is required")
	}
	action := req.Action
	if action == "" {
		action = "CREATE"
	}

	input, err := validation.Validate(req.Resource, req.Payload)
	if err != nil {
		p.metrics.ObserveRejection(req.Resource, err)
		p.recorder.Record(ctx, audit.Entry{
			Action:      audit.ActionValidationFailed,
			Resource:    string(req.Resource),
			ResourceID:  req.ResourceID,
			Changes:     rejectionDetails(action, err),
			Outcome:     audit.OutcomeFailure,
			ErrorDetail: err.Error(),
		})
		return nil, err
	}

	stored, err := p.encryptor.EncryptSensitive(input)
	if err != nil {
		p.fail(ctx, req, action, err)
		return nil, err
	}

	id, err := req.Persist(ctx, stored)
	if err != nil {
		p.fail(ctx, req, action, err)
		return nil, fmt.Errorf("persist %s: %w", req.Resource, err)
	}
	if id == "" {
		id = req.ResourceID
	}

	p.recorder.Record(ctx, audit.Entry{
		Action:     action,
		Resource:   string(req.Resource),
		ResourceID: id,
		Changes:    map[string]any{"fields": sortedKeys(stored)},
		Outcome:    audit.OutcomeSuccess,
	})
	return &WriteResult{ResourceID: id, Stored: stored}, nil
}

// Read decrypts a stored record and records the access. Fields that cannot
// be decrypted are returned as stored.
func (p *Pipeline) Read(ctx context.Context, req ReadRequest) (map[string]any, error) {
	plain, err := p.encryptor.DecryptSensitive(ctx, req.Stored)
	if err != nil {
		p.recorder.Record(ctx, audit.Entry{
			Action:      audit.ActionRecordRead,
			Resource:    req.Resource,
			ResourceID:  req.ResourceID,
			Outcome:     audit.OutcomeFailure,
			ErrorDetail: err.Error(),
		})
		return nil, err
	}
	p.recorder.Record(ctx, audit.Entry{
		Action:     audit.ActionRecordRead,
		Resource:   req.Resource,
		ResourceID: req.ResourceID,
		Outcome:    audit.OutcomeSuccess,
	})
	return plain, nil
}

func (p *Pipeline) fail(ctx context.Context, req WriteRequest, action string, err error) {
	p.logger.WarnContext(ctx, "storefront write failed",
		"resource", req.Resource,
		"action", action,
		"error", err,
	)
	p.recorder.Record(ctx, audit.Entry{
		Action:      action,
		Resource:    string(req.Resource),
		ResourceID:  req.ResourceID,
		Outcome:     audit.OutcomeFailure,
		ErrorDetail: err.Error(),
	})
}

// rejectionDetails names the offending field and constraint, never the value.
func rejectionDetails(action string, err error) map[string]any {
	details := map[string]any{"action": action}
	if de, ok := dErrors.As(err); ok {
		if de.Field != "" {
			details["field"] = de.Field
		}
		if de.Constraint != "" {
			details["constraint"] = de.Constraint
		}
	}
	return details
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
