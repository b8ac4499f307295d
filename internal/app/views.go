package app

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"luxe_residences/internal/domain"
)

// Phase is the single state tag of a view; it replaces independent
// loading/error/data flags.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseNotFound
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseNotFound:
		return "not_found"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

const (
	EmptyListingMessage = "No residences available at the moment."
	DetailFailedNotice  = "Failed to load residence details"
	galleryFillSize     = 4
	mapsEmbedBase       = "https://www.google.com/maps/embed/v1/place"
)

type NoticeLevel string

const (
	NoticeSuccess  NoticeLevel = "success"
	NoticeAdvisory NoticeLevel = "advisory"
	NoticeError    NoticeLevel = "error"
)

// Notice is a transient, non-blocking message shown to the visitor.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

type ListingView struct {
	Phase      Phase              `json:"phase"`
	Residences []domain.Residence `json:"items"`
	Advisory   string             `json:"advisory,omitempty"`
	Err        error              `json:"-"`
}

// Empty reports the explicit empty state: loaded with nothing to show.
func (v ListingView) Empty() bool { return v.Phase == PhaseLoaded && len(v.Residences) == 0 }

type DetailView struct {
	Phase       Phase             `json:"phase"`
	ID          string            `json:"id"`
	Residence   *domain.Residence `json:"residence,omitempty"`
	Gallery     []string          `json:"gallery,omitempty"`
	ActiveImage string            `json:"activeImage,omitempty"`
	ActiveIndex int               `json:"activeIndex"`
	MapURL      string            `json:"mapUrl,omitempty"`
	CanReserve  bool              `json:"canReserve"`
	Notice      *Notice           `json:"notice,omitempty"`
	Err         error             `json:"-"`
}

// SelectImage changes the active image to the i-th gallery entry. It is a
// local selection only and never triggers a fetch.
func (v *DetailView) SelectImage(i int) bool {
	if v.Phase != PhaseLoaded || i < 0 || i >= len(v.Gallery) {
		return false
	}
	v.ActiveIndex, v.ActiveImage = i, v.Gallery[i]
	return true
}

type ViewLoader struct {
	catalog *CatalogService
	mapsKey string
}

func NewViewLoader(c *CatalogService, mapsKey string) *ViewLoader {
	return &ViewLoader{catalog: c, mapsKey: mapsKey}
}

// Listing performs exactly one collection read for the lifetime of ctx.
// If ctx ends first the result is dropped and the view stays Idle.
func (l *ViewLoader) Listing(ctx context.Context) ListingView {
	v := ListingView{Phase: PhaseLoading, Residences: []domain.Residence{}}
	res, err := await(ctx, func(ctx context.Context) (ListResult, error) {
		return l.catalog.ListResidences(ctx), nil
	})
	if err != nil {
		return ListingView{Phase: PhaseIdle, Residences: []domain.Residence{}, Err: err}
	}

	v.Phase = PhaseLoaded
	if res.FromFallback {
		v.Residences = res.Residences
		v.Advisory = res.Advisory
		return v
	}
	for _, r := range res.Residences {
		if !r.Sold {
			v.Residences = append(v.Residences, r)
		}
	}
	return v
}

func (l *ViewLoader) Detail(ctx context.Context, id string) DetailView {
	r, err := await(ctx, func(ctx context.Context) (domain.Residence, error) {
		return l.catalog.GetResidence(ctx, id)
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		return DetailView{Phase: PhaseNotFound, ID: id}
	case ctx.Err() != nil:
		return DetailView{Phase: PhaseIdle, ID: id, Err: ctx.Err()}
	default:
		return DetailView{
			Phase:  PhaseFailed,
			ID:     id,
			Notice: &Notice{Level: NoticeError, Message: DetailFailedNotice},
			Err:    err,
		}
	}

	return DetailView{
		Phase:       PhaseLoaded,
		ID:          id,
		Residence:   &r,
		Gallery:     gallery(r),
		ActiveImage: r.Image,
		MapURL:      MapEmbedURL(l.mapsKey, r.Location),
		CanReserve:  !r.Sold,
	}
}

func gallery(r domain.Residence) []string {
	if len(r.SubImages) > 0 {
		return append([]string(nil), r.SubImages...)
	}
	out := make([]string, galleryFillSize)
	for i := range out {
		out[i] = r.Image
	}
	return out
}

// MapEmbedURL builds the map widget URL for a free-text location.
// Spaces are encoded as %20 rather than '+'.
func MapEmbedURL(key, location string) string {
	q := strings.ReplaceAll(url.QueryEscape(location), "+", "%20")
	return mapsEmbedBase + "?key=" + url.QueryEscape(key) + "&q=" + q
}

type result[T any] struct {
	v   T
	err error
}

// await runs fn in its own goroutine and returns its result unless ctx is
// done first. Late results are discarded.
func await[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	ch := make(chan result[T], 1)
	go func() {
		v, err := fn(ctx)
		ch <- result[T]{v: v, err: err}
	}()
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return r.v, r.err
	}
}
