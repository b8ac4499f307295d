// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"luxe_residences/internal/app"
	"luxe_residences/internal/domain"
)

type Handlers struct {
	Views        *app.ViewLoader
	Reservations *app.ReservationService
	Pages        *Pages
	CORSOrigins  []string
	StaticDir    string
}

type problem struct {
	Type   string   `json:"type"`
	Title  string   `json:"title"`
	Status int      `json:"status"`
	Detail string   `json:"detail,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	// pages
	s.mux.Get("/", h.homePage)
	s.mux.Get("/residences/{id}", h.residencePage)
	s.mux.Post("/residences/{id}/reservations", h.reservationForm)
	if h.StaticDir != "" {
		s.mux.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(h.StaticDir))))
	}
	s.mux.NotFound(h.notFoundPage)

	// json
	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(CORS(h.CORSOrigins))
		r.Get("/residences", h.listResidences)
		r.Get("/residences/{id}", h.getResidence)
		r.Post("/residences/{id}/reservations", h.submitReservation)
	})
}

// residenceID is the {id} route parameter, decoded. chi matches on the raw
// path when the client escaped characters such as '/', so the parameter may
// still carry escapes.
func residenceID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		if u, err := url.PathUnescape(id); err == nil {
			return u
		}
	}
	return id
}

func writeProblem(w http.ResponseWriter, status int, title, detail string, fields ...string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	p := problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Fields: fields}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSONWithETag(w http.ResponseWriter, r *http.Request, v any, what string) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msgf("failed to write %s body", what)
	}
}

func (h *Handlers) listResidences(w http.ResponseWriter, r *http.Request) {
	v := h.Views.Listing(r.Context())
	if v.Phase == app.PhaseIdle {
		return // client went away
	}
	writeJSONWithETag(w, r, v, "listResidences")
}

func (h *Handlers) getResidence(w http.ResponseWriter, r *http.Request) {
	v := h.Views.Detail(r.Context(), residenceID(r))
	switch v.Phase {
	case app.PhaseNotFound:
		writeProblem(w, http.StatusNotFound, "Not Found", "residence not found")
	case app.PhaseFailed:
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", v.Notice.Message)
	case app.PhaseLoaded:
		writeJSONWithETag(w, r, v, "getResidence")
	}
}

type reservationResponse struct {
	RequestID string                    `json:"requestId"`
	Notice    app.Notice                `json:"notice"`
	Form      domain.ReservationRequest `json:"form"`
}

func (h *Handlers) submitReservation(w http.ResponseWriter, r *http.Request) {
	var req domain.ReservationRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be a JSON reservation request")
		return
	}

	id := residenceID(r)
	switch v := h.Views.Detail(r.Context(), id); {
	case v.Phase == app.PhaseNotFound:
		writeProblem(w, http.StatusNotFound, "Not Found", "residence not found")
		return
	case v.Phase == app.PhaseFailed:
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", v.Notice.Message)
		return
	case v.Phase != app.PhaseLoaded:
		return // client went away
	case !v.CanReserve:
		writeProblem(w, http.StatusConflict, "Not Available", app.ReservationClosedMessage)
		return
	}

	receipt, form, err := h.Reservations.Submit(r.Context(), id, req)
	if err != nil {
		var ce *app.ConstraintError
		if errors.As(err, &ce) {
			writeProblem(w, http.StatusUnprocessableEntity, "Incomplete form", "required fields are missing or malformed", ce.Fields...)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(reservationResponse{RequestID: receipt.RequestID, Notice: receipt.Notice, Form: form}); err != nil {
		log.Error().Err(err).Msg("failed to write submitReservation body")
	}
}
