package httptransport

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"marketplace-service/internal/auth"
	"marketplace-service/internal/entity"
	"marketplace-service/internal/metrics"
	"marketplace-service/internal/service"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// RequestLogger writes one line per request and records the HTTP metrics.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()

			// chi middleware.RequestID кладёт id в контекст
			reqID := middleware.GetReqID(r.Context())

			next.ServeHTTP(sw, r)

			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			elapsed := time.Since(start)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
			metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

			log.Info("http request",
				zap.String("req_id", reqID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Int("bytes", sw.bytes),
				zap.Int64("duration_ms", elapsed.Milliseconds()),
			)
		})
	}
}

type ctxKey struct{}

// CurrentUser returns the user attached by Authenticator.
func CurrentUser(ctx context.Context) *entity.User {
	u, _ := ctx.Value(ctxKey{}).(*entity.User)
	return u
}

func withUser(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// Authenticator resolves the bearer token to an active user and marks them online.
type Authenticator struct {
	tokens   *auth.TokenManager
	users    service.UserRepository
	presence service.Presence
	log      *zap.Logger
}

func NewAuthenticator(tokens *auth.TokenManager, users service.UserRepository, presence service.Presence, log *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, presence: presence, log: log}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeErr(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		claims, err := a.tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		u, err := a.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				writeErr(w, http.StatusUnauthorized, "User not found.")
				return
			}
			a.log.Error("load user", zap.String("user_id", claims.UserID.String()), zap.Error(err))
			writeErr(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !u.IsActive || u.Suspended {
			writeErr(w, http.StatusUnauthorized, "User is inactive or suspended.")
			return
		}
		if !u.EmailVerified {
			writeErr(w, http.StatusUnauthorized, "Email is not verified.")
			return
		}

		if err := a.presence.Touch(r.Context(), u.ID); err != nil {
			a.log.Warn("presence touch failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}

// RequireRole rejects users without role with 403.
func RequireRole(role entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := CurrentUser(r.Context())
			if u == nil {
				writeErr(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}
			if !u.HasRole(role) {
				writeErr(w, http.StatusForbidden, "Only "+string(role)+"s can perform this action.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
