package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/monitor"
)

func testAlert(kind audit.EventKind) monitor.Alert {
	return monitor.Alert{
		Severity:      monitor.SeverityHigh,
		Kind:          kind,
		ActorID:       "user-7",
		SourceAddress: "203.0.113.7",
		Details:       map[string]any{"path": "/admin/audit/recent"},
		Timestamp:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestLogDispatcher(t *testing.T) {
	var buf bytes.Buffer
	d := NewLogDispatcher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, d.Dispatch(context.Background(), testAlert(audit.KindAdminAccessDenied)))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "SECURITY ALERT", line["msg"])
	assert.Equal(t, "ADMIN_ACCESS_DENIED", line["kind"])
	assert.Equal(t, "203.0.113.7", line["source_address"])
}

func TestRecentBuffer(t *testing.T) {
	b := NewRecentBuffer(2)
	ctx := context.Background()

	assert.Empty(t, b.Recent(10))

	kinds := []audit.EventKind{audit.KindAdminAccessDenied, audit.KindMultipleFailedLogins, audit.KindAdminAccessDenied}
	for i, k := range kinds {
		a := testAlert(k)
		a.ActorID = string(rune('a' + i))
		require.NoError(t, b.Dispatch(ctx, a))
	}

	recent := b.Recent(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ActorID, "newest first")
	assert.Equal(t, "b", recent[1].ActorID)
	assert.Equal(t, 2, b.Len())

	assert.Len(t, b.Recent(1), 1)
}

type funcDispatcher func(context.Context, monitor.Alert) error

func (f funcDispatcher) Dispatch(ctx context.Context, a monitor.Alert) error { return f(ctx, a) }

func TestFanout(t *testing.T) {
	buf := NewRecentBuffer(10)
	boom := errors.New("boom")
	var after int

	f := Fanout{
		funcDispatcher(func(context.Context, monitor.Alert) error { return boom }),
		nil,
		buf,
		funcDispatcher(func(context.Context, monitor.Alert) error { after++; return nil }),
	}

	err := f.Dispatch(context.Background(), testAlert(audit.KindAdminAccessDenied))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, buf.Len(), "later dispatchers still run")
	assert.Equal(t, 1, after)

	assert.NoError(t, Fanout{buf}.Dispatch(context.Background(), testAlert(audit.KindAdminAccessDenied)))
}

func TestWebhookDispatcher(t *testing.T) {
	t.Run("posts alert as JSON", func(t *testing.T) {
		var got webhookPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		d, err := NewWebhookDispatcher(srv.URL, WithHTTPClient(srv.Client()))
		require.NoError(t, err)
		require.NoError(t, d.Dispatch(context.Background(), testAlert(audit.KindMultipleFailedLogins)))

		assert.Equal(t, "[HIGH] MULTIPLE_FAILED_LOGINS from 203.0.113.7 (actor user-7)", got.Text)
		assert.Equal(t, audit.KindMultipleFailedLogins, got.Alert.Kind)
		assert.Equal(t, "/admin/audit/recent", got.Alert.Details["path"])
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		d, err := NewWebhookDispatcher(srv.URL)
		require.NoError(t, err)
		err = d.Dispatch(context.Background(), testAlert(audit.KindAdminAccessDenied))
		assert.ErrorContains(t, err, "status 503")
	})

	t.Run("url required", func(t *testing.T) {
		_, err := NewWebhookDispatcher("")
		assert.Error(t, err)
	})
}

func TestNewKafkaDispatcher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaDispatcher(nil, "")
	assert.ErrorContains(t, err, "kafka brokers are required")
}
