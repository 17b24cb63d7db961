package ratelimit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/middleware/metadata"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/requestcontext"
)

type evaluated struct{ events []audit.SecurityEvent }

func (e *evaluated) Evaluate(_ context.Context, ev audit.SecurityEvent) {
	e.events = append(e.events, ev)
}

func TestLimiter_PerKeyBuckets(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := New(1, 2, WithClock(func() time.Time { return now }))

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "burst exhausted")
	assert.True(t, l.Allow("b"), "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"), "refilled after one second")
}

func TestLimiter_Sweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := New(1, 1, WithIdleTTL(time.Minute), WithClock(func() time.Time { return now }))
	l.Allow("a")
	now = now.Add(30 * time.Second)
	l.Allow("b")

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 0, l.Sweep())
}

func TestLimiter_MaxClientsEvictsLeastRecentlySeen(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := New(1, 1, WithMaxClients(2), WithClock(func() time.Time { return now }))

	assert.True(t, l.Allow("a"))
	now = now.Add(time.Millisecond)
	assert.True(t, l.Allow("b"))
	now = now.Add(time.Millisecond)
	assert.False(t, l.Allow("a"), "touches a; b is now the oldest")
	now = now.Add(time.Millisecond)
	assert.True(t, l.Allow("c"))

	assert.Len(t, l.visitors, 2)
	assert.Contains(t, l.visitors, "a")
	assert.Contains(t, l.visitors, "c")
	assert.False(t, l.Allow("a"), "surviving bucket keeps its state")
}

func TestMiddleware_ForwardedHeaderRotationDoesNotEvadeLimit(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := New(1, 1, WithClock(func() time.Time { return now }))
	ev := &evaluated{}
	h := metadata.ClientMetadata(nil)(Middleware(l, ev, slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	))

	allowed := 0
	for i := 0; i < 50; i++ {
		r := httptest.NewRequest(http.MethodPost, "/v1/validate/login", nil)
		r.RemoteAddr = "198.51.100.2:40000"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code == http.StatusNoContent {
			allowed++
		}
	}

	assert.Equal(t, 1, allowed)
	assert.Len(t, l.visitors, 1)
	require.Len(t, ev.events, 49)
	assert.Equal(t, "198.51.100.2", ev.events[0].SourceAddress)
}

func TestMiddleware(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := New(0.5, 1, WithClock(func() time.Time { return now }))
	ev := &evaluated{}
	h := Middleware(l, ev, slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/v1/validate/login", nil)
		r = r.WithContext(requestcontext.WithClientMetadata(r.Context(), "198.51.100.2", "bot/1.0"))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusNoContent, send().Code)

	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	require.Len(t, ev.events, 1)
	assert.Equal(t, audit.KindRateLimitExceeded, ev.events[0].Kind)
	assert.Equal(t, "198.51.100.2", ev.events[0].SourceAddress)
	assert.Equal(t, "/v1/validate/login", ev.events[0].Details["path"])
}
