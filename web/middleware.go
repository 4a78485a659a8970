package web

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Middleware decorates a handler.
type Middleware func(http.Handler) http.Handler

// wrap applies mws around h. The first middleware sees the request first.
func wrap(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

const contentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'"

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// responseStats records what a handler wrote.
type responseStats struct {
	http.ResponseWriter
	status int
	size   int
}

func (rs *responseStats) WriteHeader(code int) {
	if rs.status == 0 {
		rs.status = code
	}
	rs.ResponseWriter.WriteHeader(code)
}

func (rs *responseStats) Write(b []byte) (int, error) {
	if rs.status == 0 {
		rs.status = http.StatusOK
	}
	n, err := rs.ResponseWriter.Write(b)
	rs.size += n
	return n, err
}

// requestLogger logs one line per request, at error level for 5xx responses.
func requestLogger(logger zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rs := &responseStats{ResponseWriter: w}

			next.ServeHTTP(rs, r)

			if rs.status == 0 {
				rs.status = http.StatusOK
			}

			level := zerolog.InfoLevel
			if rs.status >= http.StatusInternalServerError {
				level = zerolog.ErrorLevel
			}
			logger.WithLevel(level).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rs.status).
				Int("bytes", rs.size).
				Dur("duration", time.Since(start)).
				Msgf("%s %s %d", r.Method, r.URL.Path, rs.status)
		})
	}
}
