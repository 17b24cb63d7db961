// Package admin guards the admin API with a shared token.
package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/httputil"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/requestcontext"
)

// HeaderAdminToken carries the admin API token.
const HeaderAdminToken = "X-Admin-Token"

// SecurityEvaluator evaluates security events.
type SecurityEvaluator interface {
	Evaluate(ctx context.Context, ev audit.SecurityEvent)
}

// RequireAdminToken rejects requests without the expected token. Each denial
// is evaluated as ADMIN_ACCESS_DENIED.
func RequireAdminToken(expectedToken string, evaluator SecurityEvaluator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderAdminToken)
			// Use constant-time comparison to prevent timing attacks
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				evaluator.Evaluate(ctx, audit.SecurityEvent{
					Kind:          audit.KindAdminAccessDenied,
					ActorID:       requestcontext.ActorID(ctx),
					SourceAddress: requestcontext.ClientIP(ctx),
					UserAgent:     requestcontext.UserAgent(ctx),
					Details: map[string]any{
						"method":        r.Method,
						"path":          r.URL.Path,
						"token_present": token != "",
					},
				})
				httputil.WriteJSONError(w, http.StatusUnauthorized, "unauthorized", "admin token required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
