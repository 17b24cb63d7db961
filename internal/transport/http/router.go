// Package httptransport exposes the trust pipeline over HTTP: form
// validation for the storefront, health and metrics, and the admin views
// over the audit trail and recent security alerts.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/internal/platform/metrics"
	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/middleware/admin"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/middleware/auth"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/middleware/metadata"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/middleware/ratelimit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/middleware/request"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/middleware/requesttime"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/monitor"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/validation"
)

// AuditRecorder records audit entries and reads back the most recent ones.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
	Recent(ctx context.Context, limit int) ([]audit.Record, error)
}

// SecurityEvaluator evaluates security events.
type SecurityEvaluator interface {
	Evaluate(ctx context.Context, ev audit.SecurityEvent)
}

// AlertSource lists recently dispatched alerts, newest first.
type AlertSource interface {
	Recent(n int) []monitor.Alert
}

// Deps are the collaborators the router wires into handlers and middleware.
type Deps struct {
	Logger            *slog.Logger
	Gatherer          prometheus.Gatherer
	HTTPMetrics       *metrics.Metrics
	ValidationMetrics *validation.Metrics
	Limiter           *ratelimit.Limiter
	JWT               auth.JWTValidator
	Recorder          AuditRecorder
	Monitor           SecurityEvaluator
	Alerts            AlertSource
	Pipeline          RecordPipeline
	TrustedProxies    *metadata.TrustedProxies
	AdminToken        string
	RequestTimeout    time.Duration
}

// Handler is the thin HTTP layer. It delegates to the pipeline components
// without embedding business logic.
type Handler struct {
	logger     *slog.Logger
	recorder   AuditRecorder
	alerts     AlertSource
	pipeline   RecordPipeline
	validation *validation.Metrics
}

// NewRouter wires all endpoints and the middleware chain.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	h := &Handler{
		logger:     logger,
		recorder:   d.Recorder,
		alerts:     d.Alerts,
		pipeline:   d.Pipeline,
		validation: d.ValidationMetrics,
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(d.TrustedProxies))
	if d.HTTPMetrics != nil {
		r.Use(d.HTTPMetrics.Middleware)
	}

	r.Get("/healthz", h.handleHealth)
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(timeout))
		if d.Limiter != nil {
			r.Use(ratelimit.Middleware(d.Limiter, d.Monitor, logger))
		}
		r.Use(auth.Authenticate(d.JWT, d.Recorder, logger))

		r.Post("/v1/validate/{resource}", h.handleValidate)
		if d.Pipeline != nil {
			r.Post("/v1/records/{resource}", h.handleProtect)
			r.With(auth.RequireRole(auth.RoleAdmin, d.Monitor, logger)).
				Post("/v1/records/{resource}/{id}/reveal", h.handleReveal)
		}

		r.Route("/admin", func(r chi.Router) {
			r.Use(admin.RequireAdminToken(d.AdminToken, d.Monitor, logger))
			r.Get("/audit/recent", h.handleRecentAudit)
			r.Get("/security/alerts", h.handleRecentAlerts)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
