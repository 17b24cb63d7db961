// Package auth attributes requests to an actor from an optional bearer token.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	jwttoken "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/internal/jwt_token"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/httputil"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/requestcontext"
)

// JWTValidator validates bearer tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*jwttoken.Claims, error)
}

// AuditRecorder records audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// SecurityEvaluator evaluates security events.
type SecurityEvaluator interface {
	Evaluate(ctx context.Context, ev audit.SecurityEvent)
}

// RoleAdmin may reveal decrypted customer records.
const RoleAdmin = "admin"

type contextKeyRole struct{}

// Role returns the authenticated actor's role, or "" when anonymous.
func Role(ctx context.Context) string {
	role, _ := ctx.Value(contextKeyRole{}).(string)
	return role
}

// Authenticate sets the actor id from a valid bearer token. Requests without
// an Authorization header pass through anonymously. An invalid token is
// recorded as an AUTH_TOKEN_REJECTED failure and answered with 401.
func Authenticate(validator JWTValidator, recorder AuditRecorder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				reject(ctx, w, recorder, logger, "malformed authorization header")
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				reject(ctx, w, recorder, logger, err.Error())
				return
			}

			ctx = requestcontext.WithActorID(ctx, claims.ActorID())
			ctx = context.WithValue(ctx, contextKeyRole{}, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(ctx context.Context, w http.ResponseWriter, recorder AuditRecorder, logger *slog.Logger, reason string) {
	logger.WarnContext(ctx, "unauthorized access - invalid token",
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
	recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionAuthTokenRejected,
		Resource:    "session",
		Outcome:     audit.OutcomeFailure,
		ErrorDetail: reason,
	})
	httputil.WriteJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
}

// RequireRole admits only authenticated actors holding role. Anonymous
// requests get 401. An authenticated actor without the role gets 403 and the
// denial is evaluated as ADMIN_ACCESS_DENIED.
func RequireRole(role string, evaluator SecurityEvaluator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor := requestcontext.ActorID(ctx)
			if actor == "" {
				httputil.WriteJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			if Role(ctx) == role {
				next.ServeHTTP(w, r)
				return
			}

			logger.WarnContext(ctx, "role required",
				"actor_id", actor,
				"role", Role(ctx),
				"required_role", role,
				"request_id", requestcontext.RequestID(ctx),
				"path", r.URL.Path,
			)
			evaluator.Evaluate(ctx, audit.SecurityEvent{
				Kind:          audit.KindAdminAccessDenied,
				ActorID:       actor,
				SourceAddress: requestcontext.ClientIP(ctx),
				UserAgent:     requestcontext.UserAgent(ctx),
				Details: map[string]any{
					"method":        r.Method,
					"path":          r.URL.Path,
					"required_role": role,
				},
			})
			httputil.WriteJSONError(w, http.StatusForbidden, "forbidden", "insufficient role")
		})
	}
}
