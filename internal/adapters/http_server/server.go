package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const defaultRequestTimeout = 15 * time.Second

// Server is the chi router shared by the HTML pages, the JSON API and the
// operational endpoints.
type Server struct{ mux *chi.Mux }

// New installs the middleware stack. Access sits outside Timeout so timed out
// requests are still counted and logged.
func New(timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	m := chi.NewRouter()
	m.Use(
		chimw.RealIP,
		chimw.RequestID,
		Access(log.Logger),
		chimw.Recoverer,
		Timeout(timeout),
	)
	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches an extra handler, e.g. /metrics.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
