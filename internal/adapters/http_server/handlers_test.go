package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "luxe_residences/internal/adapters/http_server"
	"luxe_residences/internal/app"
	"luxe_residences/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	list    []domain.Residence
	listErr error
	getErr  error
}

func (f *fakeStore) ListResidences(ctx context.Context) ([]domain.Residence, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeStore) GetResidence(ctx context.Context, id string) (domain.Residence, error) {
	if f.getErr != nil {
		return domain.Residence{}, f.getErr
	}
	for _, r := range f.list {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Residence{}, domain.ErrNotFound
}

func newTestServer(t *testing.T, store domain.ResidenceStore) *httptest.Server {
	t.Helper()
	pages, err := server.NewPages()
	require.NoError(t, err)

	srv := server.New(5 * time.Second)
	srv.MountHandlers(&server.Handlers{
		Views:        app.NewViewLoader(app.NewCatalogService(store), "maps-key"),
		Reservations: app.NewReservationService(),
		Pages:        pages,
		CORSOrigins:  []string{"*"},
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func sample() []domain.Residence {
	return []domain.Residence{
		{ID: "villa-azure", Name: "Villa Azure", Price: "$2,500,000", Image: "/1.jpg", Location: "Malibu, CA",
			Features: domain.Features{Beds: 5, Baths: 6, Sqft: 4500}},
		{ID: "gone", Name: "Gone Villa", Price: "$1", Image: "/2.jpg", Location: "Nowhere",
			Features: domain.Features{Beds: 1, Baths: 1, Sqft: 10}, Sold: true},
	}
}

func get(t *testing.T, u string) (*http.Response, string) {
	t.Helper()
	res, err := http.Get(u)
	require.NoError(t, err)
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	return res, string(b)
}

// noRedirect keeps the 303 visible.
var noRedirect = &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

// ---- pages ----

func TestHomePage_ListsUnsold(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: sample()})

	res, body := get(t, ts.URL+"/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Villa Azure")
	assert.Contains(t, body, `href="/residences/villa-azure"`)
	assert.NotContains(t, body, "Gone Villa")
	assert.NotContains(t, body, "sample data")
	assert.Contains(t, body, "Unrivaled Amenities")
}

func TestHomePage_FallbackAdvisory(t *testing.T) {
	ts := newTestServer(t, &fakeStore{listErr: errors.New("down")})

	res, body := get(t, ts.URL+"/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Could not connect to database. Using sample data.")
	assert.Contains(t, body, "Desert Mirage")
	assert.Equal(t, 9, strings.Count(body, `class="card"`))
}

func TestHomePage_Empty(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: []domain.Residence{}})

	_, body := get(t, ts.URL+"/")
	assert.Contains(t, body, app.EmptyListingMessage)
}

func TestResidencePage(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: sample()})

	res, body := get(t, ts.URL+"/residences/villa-azure")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "About this Residence")
	assert.Contains(t, body, "$2,500,000")
	assert.Contains(t, body, "Make Reservation")
	assert.Contains(t, body, "q=Malibu%2C%20CA")
	assert.Equal(t, 4, strings.Count(body, `href="?image=`))
	assert.Equal(t, 1, strings.Count(body, `class="thumb active"`), "synthesized gallery highlights one thumbnail")
	assert.Contains(t, body, `href="?image=0" class="thumb active"`)
	assert.Contains(t, body, `href="tel:`)
	assert.NotContains(t, body, "ZgotmplZ")

	_, body = get(t, ts.URL+"/residences/villa-azure?image=2")
	assert.Equal(t, 1, strings.Count(body, `class="thumb active"`))
	assert.Contains(t, body, `href="?image=2" class="thumb active"`)
}

func TestPages_IDsNeedingEscapes(t *testing.T) {
	odd := []domain.Residence{
		{ID: "suite?7#b", Name: "Query Suite", Price: "$1", Image: "/1.jpg", Location: "X", Features: domain.Features{Beds: 1, Baths: 1, Sqft: 1}},
		{ID: "tower/12", Name: "Tower Twelve", Price: "$2", Image: "/2.jpg", Location: "Y", Features: domain.Features{Beds: 1, Baths: 1, Sqft: 1}},
	}
	ts := newTestServer(t, &fakeStore{list: odd})

	_, body := get(t, ts.URL+"/")
	assert.Contains(t, body, `href="/residences/suite%3F7%23b"`)
	assert.Contains(t, body, `href="/residences/tower%2F12"`)

	res, body := get(t, ts.URL+"/residences/suite%3F7%23b?reserve=1")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Query Suite")
	assert.Contains(t, body, `action="/residences/suite%3F7%23b/reservations"`)

	res, body = get(t, ts.URL+"/residences/tower%2F12")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Tower Twelve")

	res, _ = get(t, ts.URL+"/v1/residences/tower%2F12")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestNotFoundPage_PhoneLink(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: sample()})

	_, body := get(t, ts.URL+"/no/such/page")
	assert.Contains(t, body, `href="tel:`)
	assert.NotContains(t, body, "ZgotmplZ")
}

func TestResidencePage_SoldDisablesReservation(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: sample()})

	_, body := get(t, ts.URL+"/residences/gone?reserve=1")
	assert.Contains(t, body, "SOLD")
	assert.Contains(t, body, "No Longer Available")
	assert.NotContains(t, body, "Submit Reservation")
}

func TestResidencePage_NotFound(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: sample()})

	res, body := get(t, ts.URL+"/residences/nope")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body, "could not be found")
}

func TestResidencePage_FetchFailure(t *testing.T) {
	ts := newTestServer(t, &fakeStore{getErr: errors.New("boom")})

	res, body := get(t, ts.URL+"/residences/villa-azure")
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Contains(t, body, app.DetailFailedNotice)
	assert.NotContains(t, body, "$2,500,000")
}

func TestReservationForm_SuccessRedirects(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: sample()})

	form := url.Values{
		"name": {"Ada"}, "email": {"ada@example.com"}, "phone": {"123"},
		"checkIn": {"2026-12-20"}, "checkOut": {"2026-12-27"}, "guests": {"2"},
	}
	res, err := noRedirect.PostForm(ts.URL+"/residences/villa-azure/reservations", form)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/residences/villa-azure?reserved=1", res.Header.Get("Location"))

	_, body := get(t, ts.URL+"/residences/villa-azure?reserved=1")
	assert.Contains(t, body, "Reservation request submitted successfully!")
	assert.NotContains(t, body, "ada@example.com")
}

func TestReservationForm_IncompleteReopensModal(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: sample()})

	res, err := http.PostForm(ts.URL+"/residences/villa-azure/reservations", url.Values{"name": {"Ada"}, "guests": {"3"}})
	require.NoError(t, err)
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	body := string(b)

	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, body, "Submit Reservation")
	assert.Contains(t, body, `value="Ada"`)
	assert.Contains(t, body, `<option value="3" selected>`)
}

func TestReservationForm_RefusedWhenNotReservable(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: sample()})
	form := url.Values{
		"name": {"Ada"}, "email": {"ada@example.com"}, "phone": {"123"},
		"checkIn": {"2026-12-20"}, "checkOut": {"2026-12-27"}, "guests": {"2"},
	}

	res, err := noRedirect.PostForm(ts.URL+"/residences/gone/reservations", form)
	require.NoError(t, err)
	b, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Contains(t, string(b), "no longer available for reservation")
	assert.NotContains(t, string(b), "Submit Reservation")

	res, err = noRedirect.PostForm(ts.URL+"/residences/nope/reservations", form)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

// ---- json ----

func TestAPI_ListResidences_ETag(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: sample()})

	res, body := get(t, ts.URL+"/v1/residences")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out struct {
		Phase    string             `json:"phase"`
		Items    []domain.Residence `json:"items"`
		Advisory string             `json:"advisory"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "loaded", out.Phase)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "villa-azure", out.Items[0].ID)

	etag := res.Header.Get("ETag")
	require.NotEmpty(t, etag)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/residences", nil)
	req.Header.Set("If-None-Match", etag)
	res2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res2.Body.Close()
	assert.Equal(t, http.StatusNotModified, res2.StatusCode)
}

func TestAPI_GetResidence(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: sample()})

	res, body := get(t, ts.URL+"/v1/residences/villa-azure")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var v struct {
		Gallery     []string `json:"gallery"`
		ActiveImage string   `json:"activeImage"`
		CanReserve  bool     `json:"canReserve"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	assert.Equal(t, []string{"/1.jpg", "/1.jpg", "/1.jpg", "/1.jpg"}, v.Gallery)
	assert.Equal(t, "/1.jpg", v.ActiveImage)
	assert.True(t, v.CanReserve)

	res, _ = get(t, ts.URL+"/v1/residences/nope")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "application/problem+json", res.Header.Get("Content-Type"))
}

func TestAPI_GetResidence_Failure(t *testing.T) {
	ts := newTestServer(t, &fakeStore{getErr: errors.New("boom")})

	res, _ := get(t, ts.URL+"/v1/residences/villa-azure")
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
}

func TestAPI_SubmitReservation(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: sample()})
	post := func(body string) (*http.Response, map[string]any) {
		res, err := http.Post(ts.URL+"/v1/residences/villa-azure/reservations", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer res.Body.Close()
		var out map[string]any
		_ = json.NewDecoder(res.Body).Decode(&out)
		return res, out
	}

	res, out := post(`{"name":"Ada","email":"ada@example.com","phone":"1","checkIn":"2026-12-27","checkOut":"2026-12-20","guests":2}`)
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, app.ReservationSuccessMessage, out["notice"].(map[string]any)["message"])
	assert.Equal(t, "", out["form"].(map[string]any)["name"])
	assert.EqualValues(t, 1, out["form"].(map[string]any)["guests"])

	res, out = post(`{"name":"Ada","guests":12}`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, out["fields"], "guests")
	assert.Contains(t, out["fields"], "email")

	res, _ = post(`{"name":`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAPI_SubmitReservation_NotReservable(t *testing.T) {
	ts := newTestServer(t, &fakeStore{list: sample()})
	body := `{"name":"Ada","email":"ada@example.com","phone":"1","checkIn":"2026-12-20","checkOut":"2026-12-27","guests":2}`

	res, err := http.Post(ts.URL+"/v1/residences/gone/reservations", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res, err = http.Post(ts.URL+"/v1/residences/nope/reservations", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &fakeStore{})
	res, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", body)
}
