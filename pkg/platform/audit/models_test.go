package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityEvent_ToEntry(t *testing.T) {
	ev := SecurityEvent{
		Kind:          KindAdminAccessDenied,
		ActorID:       "user-1",
		SourceAddress: "203.0.113.7",
		UserAgent:     "curl/8.0",
		Details:       map[string]any{"path": "/admin/audit/recent"},
	}

	entry := ev.ToEntry()
	assert.Equal(t, "SECURITY_EVENT_ADMIN_ACCESS_DENIED", entry.Action)
	assert.Equal(t, ResourceSecurity, entry.Resource)
	assert.Equal(t, OutcomeFailure, entry.Outcome)
	assert.Equal(t, "user-1", entry.ActorID)
	assert.Equal(t, "203.0.113.7", entry.SourceAddress)
	assert.Equal(t, "curl/8.0", entry.UserAgent)
	assert.Equal(t, ev.Details, entry.Changes)
}

func TestSecurityEvent_ToEntryWithoutDetails(t *testing.T) {
	entry := SecurityEvent{Kind: KindRateLimitExceeded}.ToEntry()
	assert.Nil(t, entry.Changes, "absent details stay absent rather than a typed nil map")
}

func TestEventKind_Valid(t *testing.T) {
	for _, k := range []EventKind{KindSuspiciousLogin, KindMultipleFailedLogins, KindAdminAccessDenied, KindRateLimitExceeded} {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, EventKind("PASSWORD_SPRAY").Valid())
}
