package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/teamline/teamline/internal/auth"
	"github.com/teamline/teamline/internal/logging"
	"github.com/teamline/teamline/pkg/httputil"
	"go.uber.org/zap"
)

type Middleware = func(http.Handler) http.Handler

func InjectLogger(lg *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), lg)))
		})
	}
}

// RequestLogger logs one line per request through zap. Paths in skip are not
// logged.
func RequestLogger(lg *zap.Logger, skip ...string) Middleware {
	skipPaths := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipPaths[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				if skipPaths[r.URL.Path] {
					return
				}
				fields := []zap.Field{
					zap.Int("status", ww.Status()),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr),
					zap.Duration("latency", time.Since(start)),
				}
				if ww.Status() >= http.StatusInternalServerError {
					lg.Error("request", fields...)
				} else {
					lg.Info("request", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// Authenticate validates the session token from the user-session cookie or
// the Authorization bearer header and stores its claims in the context.
func Authenticate(secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie("user-session"); err == nil {
				token = cookie.Value
			} else if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
			if token == "" {
				httputil.WriteError(r.Context(), w, http.StatusUnauthorized, errors.New("missing auth token"))
				return
			}

			claims, err := auth.Parse(secret, token)
			if err != nil {
				httputil.WriteError(r.Context(), w, http.StatusUnauthorized, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
