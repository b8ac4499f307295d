package httpserver

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"luxe_residences/internal/adapters/observability"
)

// Timeout bounds a whole request. The request context is cancelled when it
// fires, which is what stops in-flight store reads.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

// CORS opens the JSON API to the configured origins (read + form submit only).
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
	}).Handler
}

// routeOf returns the matched chi pattern so metrics stay low-cardinality
// ("/residences/{id}", not every id).
func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// Access records one metrics sample and one log line per request.
// Server errors log at error, client errors at warn.
func Access(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route, took := routeOf(r), time.Since(start)
			observability.ObserveHTTP(route, r.Method, status, took)

			lvl := zerolog.InfoLevel
			switch {
			case status >= 500:
				lvl = zerolog.ErrorLevel
			case status >= 400:
				lvl = zerolog.WarnLevel
			}
			l.WithLevel(lvl).
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("route", route).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", took).
				Str("remote", clientHost(r.RemoteAddr)).
				Str("ua", r.UserAgent()).
				Msg("http_request")
		})
	}
}

// clientHost strips the port; RealIP has already applied forwarding headers.
func clientHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
