package httpserver

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"luxe_residences/internal/app"
	"luxe_residences/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages holds one parsed template set per page, each sharing layout.html.
type Pages struct {
	sets map[string]*template.Template
}

func NewPages() (*Pages, error) {
	funcs := template.FuncMap{
		"asset":      assetURL,
		"pathEscape": url.PathEscape,
	}
	p := &Pages{sets: map[string]*template.Template{}}
	for _, name := range []string{"home.html", "residence.html", "notfound.html"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		p.sets[name] = t
	}
	return p, nil
}

// assetURL maps image references from the store ("/1.jpg") to the static
// route; absolute URLs pass through.
func assetURL(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return "/static/" + strings.TrimPrefix(ref, "/")
}

func (p *Pages) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := p.sets[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("template render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Error().Err(err).Str("page", page).Msg("failed to write page")
	}
}

type homeData struct {
	Title        string
	Listing      app.ListingView
	EmptyMessage string
	Amenities    []Amenity
	Gallery      []string
	Phone        string
	PhoneHref    template.URL
}

type residenceData struct {
	Title        string
	View         app.DetailView
	KeyFeatures  []string
	Form         domain.ReservationRequest
	GuestOptions []app.GuestOption
	Invalid      map[string]bool
	ModalOpen    bool
	Notice       *app.Notice
	Phone        string
	PhoneHref    template.URL
}

type notFoundData struct {
	Title     string
	Notice    *app.Notice
	Phone     string
	PhoneHref template.URL
}

func newNotFoundData(n *app.Notice) notFoundData {
	return notFoundData{Title: "Not Found", Notice: n, Phone: contactPhone, PhoneHref: contactPhoneHref}
}

func (h *Handlers) homePage(w http.ResponseWriter, r *http.Request) {
	v := h.Views.Listing(r.Context())
	if v.Phase == app.PhaseIdle {
		return
	}
	h.Pages.render(w, http.StatusOK, "home.html", homeData{
		Title:        "Luxe Residences",
		Listing:      v,
		EmptyMessage: app.EmptyListingMessage,
		Amenities:    amenities,
		Gallery:      galleryImages,
		Phone:        contactPhone,
		PhoneHref:    contactPhoneHref,
	})
}

func (h *Handlers) notFoundPage(w http.ResponseWriter, r *http.Request) {
	h.Pages.render(w, http.StatusNotFound, "notfound.html", newNotFoundData(nil))
}

// residencePage renders the detail view. Query parameters carry local UI
// state: image (active thumbnail), reserve (modal open), reserved (toast).
func (h *Handlers) residencePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := h.Views.Detail(r.Context(), residenceID(r))
	data, ok := h.detailData(w, v)
	if !ok {
		return
	}
	if s := q.Get("image"); s != "" {
		if i, err := strconv.Atoi(s); err == nil {
			data.View.SelectImage(i)
		}
	}
	data.ModalOpen = q.Get("reserve") == "1" && v.CanReserve
	if q.Get("reserved") == "1" {
		data.Notice = &app.Notice{Level: app.NoticeSuccess, Message: app.ReservationSuccessMessage}
	}
	h.Pages.render(w, http.StatusOK, "residence.html", data)
}

// detailData handles the terminal phases itself and reports whether the
// caller should render the loaded residence.
func (h *Handlers) detailData(w http.ResponseWriter, v app.DetailView) (residenceData, bool) {
	switch v.Phase {
	case app.PhaseNotFound:
		h.Pages.render(w, http.StatusNotFound, "notfound.html", newNotFoundData(nil))
		return residenceData{}, false
	case app.PhaseFailed:
		h.Pages.render(w, http.StatusBadGateway, "notfound.html", newNotFoundData(v.Notice))
		return residenceData{}, false
	case app.PhaseLoaded:
	default:
		return residenceData{}, false
	}
	return residenceData{
		Title:        v.Residence.Name,
		View:         v,
		KeyFeatures:  keyFeatures,
		Form:         app.NewReservationForm(),
		GuestOptions: app.GuestOptions(),
		Phone:        contactPhone,
		PhoneHref:    contactPhoneHref,
	}, true
}

func formRequest(f url.Values) domain.ReservationRequest {
	guests, _ := strconv.Atoi(f.Get("guests"))
	return domain.ReservationRequest{
		Name:     f.Get("name"),
		Email:    f.Get("email"),
		Phone:    f.Get("phone"),
		CheckIn:  f.Get("checkIn"),
		CheckOut: f.Get("checkOut"),
		Guests:   guests,
		Message:  f.Get("message"),
	}
}

// reservationForm accepts the modal's POST. Success redirects back to the
// detail page (emptied form, success toast). A sold residence is refused with
// the page re-rendered; a form the browser should not have let through is
// shown again with its values.
func (h *Handlers) reservationForm(w http.ResponseWriter, r *http.Request) {
	id := residenceID(r)
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	req := formRequest(r.PostForm)

	v := h.Views.Detail(r.Context(), id)
	data, ok := h.detailData(w, v)
	if !ok {
		return
	}
	if !v.CanReserve {
		data.Notice = &app.Notice{Level: app.NoticeError, Message: app.ReservationClosedMessage}
		h.Pages.render(w, http.StatusConflict, "residence.html", data)
		return
	}

	_, _, err := h.Reservations.Submit(r.Context(), id, req)
	if err == nil {
		http.Redirect(w, r, "/residences/"+url.PathEscape(id)+"?reserved=1", http.StatusSeeOther)
		return
	}

	var ce *app.ConstraintError
	if !errors.As(err, &ce) {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data.Form = req
	data.ModalOpen = true
	data.Invalid = map[string]bool{}
	for _, f := range ce.Fields {
		data.Invalid[f] = true
	}
	h.Pages.render(w, http.StatusUnprocessableEntity, "residence.html", data)
}
