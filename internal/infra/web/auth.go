package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gamebot-panel/internal/domain/model"
	"gamebot-panel/internal/infra/logging"
	"gamebot-panel/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
)

// sessionCookie is the panel's auth cookie; it holds a signed token carrying
// the redis session ID.
const sessionCookie = "panel_session"

type Middleware func(http.Handler) http.Handler

func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type ctxKey string

const ctxUserKey ctxKey = "current_user"

// currentUser returns the authenticated user placed in the context by
// RequireSession, or nil outside the protected route groups.
func currentUser(r *http.Request) *model.User {
	u, _ := r.Context().Value(ctxUserKey).(*model.User)
	return u
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func TraceID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tid := uuid.NewString()
			ctx := logging.WithTraceID(r.Context(), tid)
			ctx = logging.WithRemoteIP(ctx, remoteIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestLog(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logging.With(r.Context(), logger)
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			metrics.ObserveHTTPRequest(r.Method, route, ww.status, float64(elapsed.Milliseconds()))
			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Dur("duration", elapsed).
				Msg("http_request")
		})
	}
}

func Recover(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// RequireSession resolves the auth cookie to a user and puts it in the
// request context. Anything that fails on the way is a plain 401.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		sid, uid, err := s.codec.Parse(cookie.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		storedUID, err := s.sessions.Get(r.Context(), sid)
		if err != nil || storedUID != uid {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		user, err := s.accountUC.GetByID(r.Context(), uid)
		if err != nil || user.Status != model.UserStatusActive {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserKey, user)
		ctx = logging.WithUserID(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireDeveloper gates the developer-only routes.
func (s *Server) RequireDeveloper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil || !user.IsDeveloper {
			writeError(w, http.StatusForbidden, "developer access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireActivation gates feature routes behind a currently valid grant.
// The check is evaluated fresh on every request.
func (s *Server) RequireActivation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ok, err := s.licUC.HasValidAccess(r.Context(), user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "access check failed")
			return
		}
		if !ok {
			writeError(w, http.StatusForbidden, "subscription expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}
