// Package audit defines the append-only audit trail model shared by the
// recorder, its storage adapters and the security monitor.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of an audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

// ResourceSecurity is the resource tag of entries produced from security events.
const ResourceSecurity = "security"

// Well-known actions recorded outside of resource CRUD.
const (
	ActionAuthTokenRejected = "AUTH_TOKEN_REJECTED"
	ActionValidationFailed  = "VALIDATION_FAILED"
	ActionRecordRead        = "READ"
)

// Entry is one audit log record. Entries are created once per action and
// never modified or deleted by the application.
type Entry struct {
	ID            uuid.UUID
	ActorID       string // empty for anonymous actions
	Action        string // e.g. "CREATE", "UPDATE", "SECURITY_EVENT_RATE_LIMIT_EXCEEDED"
	Resource      string
	ResourceID    string
	SourceAddress string
	UserAgent     string
	// Changes is an opaque payload serialized to JSON when stored. Nil means
	// no payload; an empty map or slice is stored as an empty payload.
	Changes     any
	Outcome     Outcome
	ErrorDetail string
	RequestID   string
	Timestamp   time.Time
}

// Record is the serialized form of an Entry handed to storage adapters.
type Record struct {
	ID            uuid.UUID `json:"id"`
	ActorID       string    `json:"actorId,omitempty"`
	Action        string    `json:"action"`
	Resource      string    `json:"resource"`
	ResourceID    string    `json:"resourceId,omitempty"`
	SourceAddress string    `json:"sourceAddress"`
	UserAgent     string    `json:"userAgent,omitempty"`
	Changes       *string   `json:"changes,omitempty"`
	Outcome       Outcome   `json:"outcome"`
	ErrorDetail   string    `json:"errorDetail,omitempty"`
	RequestID     string    `json:"requestId,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Store persists audit records. Implementations only append.
type Store interface {
	Append(ctx context.Context, record Record) error
}

// Reader is implemented by stores that can list recent records, newest first.
type Reader interface {
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// EventKind enumerates security event kinds.
type EventKind string

const (
	KindSuspiciousLogin      EventKind = "SUSPICIOUS_LOGIN"
	KindMultipleFailedLogins EventKind = "MULTIPLE_FAILED_LOGINS"
	KindAdminAccessDenied    EventKind = "ADMIN_ACCESS_DENIED"
	KindRateLimitExceeded    EventKind = "RATE_LIMIT_EXCEEDED"
)

// Valid reports whether k is a known kind.
func (k EventKind) Valid() bool {
	switch k {
	case KindSuspiciousLogin, KindMultipleFailedLogins, KindAdminAccessDenied, KindRateLimitExceeded:
		return true
	}
	return false
}

// Action returns the audit action tag for events of this kind.
func (k EventKind) Action() string {
	return "SECURITY_EVENT_" + string(k)
}

// SecurityEvent is a transient description of anomalous activity. It is
// persisted as an Entry and, for some kinds, escalated as an alert.
type SecurityEvent struct {
	Kind          EventKind
	ActorID       string
	SourceAddress string
	UserAgent     string
	Details       map[string]any
}

// ToEntry converts the event into the audit entry recorded for it.
func (e SecurityEvent) ToEntry() Entry {
	entry := Entry{
		ActorID:       e.ActorID,
		Action:        e.Kind.Action(),
		Resource:      ResourceSecurity,
		SourceAddress: e.SourceAddress,
		UserAgent:     e.UserAgent,
		Outcome:       OutcomeFailure,
	}
	if e.Details != nil {
		entry.Changes = e.Details
	}
	return entry
}
