package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sketchkeeper/internal/common"
	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/models"
	"github.com/google/uuid"
)

type ctxKey struct{}

type identity struct {
	user   *models.User
	claims *auth.Claims
}

func userFromContext(ctx context.Context) (*models.User, *auth.Claims, bool) {
	id, ok := ctx.Value(ctxKey{}).(identity)
	if !ok {
		return nil, nil, false
	}
	return id.user, id.claims, true
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

type metaWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (m *metaWriter) WriteHeader(code int) {
	if m.status == 0 {
		m.status = code
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *metaWriter) Write(b []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	n, err := m.ResponseWriter.Write(b)
	m.size += n
	return n, err
}

func withLogging(l logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			mw := &metaWriter{ResponseWriter: w}

			next.ServeHTTP(mw, r)

			l.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", mw.status,
				"size", mw.size,
				"duration", time.Since(start))
		})
	}
}

// authenticate resolves the session cookie when present. Requests with a
// missing or invalid session continue anonymously.
func (h *handlers) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(common.SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, claims, err := h.users.Identify(r.Context(), cookie.Value)
		if err != nil {
			if !isSessionError(err) {
				h.log.Warn(r.Context(), "session lookup failed", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, identity{user: user, claims: claims})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isSessionError(err error) bool {
	return errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrTokenRevoked) ||
		errors.Is(err, common.ErrorUnauthorized)
}

func requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := userFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}
