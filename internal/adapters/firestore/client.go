package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"luxe_residences/internal/adapters/observability"
	"luxe_residences/internal/domain"
)

const (
	driver   = "firestore"
	pageSize = 300
)

// Client reads a collection through the Firestore REST API.
type Client struct {
	base       string // .../projects/{p}/databases/{d}/documents
	collection string
	hc         *http.Client
	key        string
	rl         *rate.Limiter
	retries    int
}

type Options struct {
	BaseURL    string // e.g. https://firestore.googleapis.com/v1
	Project    string
	Database   string
	Collection string
	APIKey     string
	RPS        int
	MaxRetries int
	Timeout    time.Duration
}

func New(o Options) (*Client, error) {
	if o.Project == "" {
		return nil, fmt.Errorf("firestore project is required")
	}
	if o.Collection == "" {
		return nil, fmt.Errorf("firestore collection is required")
	}
	if o.Database == "" {
		o.Database = "(default)"
	}
	if o.RPS <= 0 {
		o.RPS = 5
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	base := strings.TrimRight(o.BaseURL, "/") +
		"/projects/" + url.PathEscape(o.Project) +
		"/databases/" + url.PathEscape(o.Database) + "/documents"
	return &Client{
		base:       base,
		collection: o.Collection,
		hc:         &http.Client{Timeout: o.Timeout},
		key:        o.APIKey,
		rl:         rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
		retries:    o.MaxRetries,
	}, nil
}

// ---- Public API ----

func (c *Client) ListResidences(ctx context.Context) (out []domain.Residence, err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "list", statusLabel(err), time.Since(start)) }()

	token := ""
	for {
		q := url.Values{"pageSize": {strconv.Itoa(pageSize)}}
		if token != "" {
			q.Set("pageToken", token)
		}
		var page listResponse
		if err := c.get(ctx, c.collectionURL(q), &page); err != nil {
			log.Debug().Err(err).Str("collection", c.collection).Msg("firestore list failed")
			return nil, err
		}
		for _, d := range page.Documents {
			r, err := mapDocument(d)
			if err != nil {
				log.Warn().Str("doc", d.Name).Err(err).Msg("skipping malformed document")
				continue
			}
			out = append(out, r)
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	log.Debug().Int("count", len(out)).Str("collection", c.collection).Msg("firestore list ok")
	return out, nil
}

func (c *Client) GetResidence(ctx context.Context, id string) (r domain.Residence, err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "get", statusLabel(err), time.Since(start)) }()

	var d document
	if err := c.get(ctx, c.documentURL(id), &d); err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Residence{}, domain.ErrNotFound
		}
		return domain.Residence{}, err
	}
	r, err = mapDocument(d)
	if err != nil {
		return domain.Residence{}, fmt.Errorf("document %q: %w", id, err)
	}
	return r, nil
}

// ---- Internals ----

var (
	ErrNotFound     = errors.New("firestore: not found")
	ErrUnauthorized = errors.New("firestore: unauthorized")
	ErrForbidden    = errors.New("firestore: forbidden")
)

func (c *Client) collectionURL(q url.Values) string {
	if c.key != "" {
		q.Set("key", c.key)
	}
	return c.base + "/" + url.PathEscape(c.collection) + "?" + q.Encode()
}

func (c *Client) documentURL(id string) string {
	u := c.base + "/" + url.PathEscape(c.collection) + "/" + url.PathEscape(id)
	if c.key != "" {
		u += "?" + url.Values{"key": {c.key}}.Encode()
	}
	return u
}

// get fetches u into out. With retries > 0, transport errors and transient
// statuses (429, 5xx) are retried with jittered backoff or the server's
// Retry-After.
func (c *Client) get(ctx context.Context, u string, out any) error {
	for attempt := 0; ; attempt++ {
		err := c.fetch(ctx, u, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		wait, ok := retryable(err, attempt)
		if !ok || attempt >= c.retries {
			return err
		}
		log.Debug().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("firestore retry")
		if !sleepCtx(ctx, wait) {
			return ctx.Err()
		}
	}
}

// fetch is a single rate-limited attempt.
func (c *Client) fetch(ctx context.Context, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "luxe-residences/1.0")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newStatusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return nil
}

var errMalformed = errors.New("malformed response")

// statusError is a non-200 reply. Firestore describes failures with a
// google.rpc.Status body; anything else is kept as text.
type statusError struct {
	code    int
	status  string
	message string
	wait    time.Duration
}

func newStatusError(resp *http.Response) *statusError {
	e := &statusError{code: resp.StatusCode, wait: retryAfter(resp.Header.Get("Retry-After"))}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil && body.Error.Message != "" {
		e.status, e.message = body.Error.Status, body.Error.Message
	} else {
		e.message = strings.TrimSpace(string(b))
	}
	return e
}

func (e *statusError) Error() string {
	if e.status != "" {
		return fmt.Sprintf("firestore %d %s: %s", e.code, e.status, e.message)
	}
	return fmt.Sprintf("firestore %d: %s", e.code, e.message)
}

func (e *statusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.code == http.StatusNotFound
	case ErrUnauthorized:
		return e.code == http.StatusUnauthorized
	case ErrForbidden:
		return e.code == http.StatusForbidden
	}
	return false
}

func (e *statusError) transient() bool {
	switch e.code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryable reports whether err is worth another attempt and how long to
// wait first.
func retryable(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, errMalformed) {
		return 0, false
	}
	var se *statusError
	if errors.As(err, &se) {
		if !se.transient() {
			return 0, false
		}
		if se.wait > 0 {
			return se.wait, true
		}
	}
	return backoff(attempt), true
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// retryAfter reads a Retry-After value given in seconds or as an HTTP date.
func retryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(n, 0)) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(time.Until(at), 0)
	}
	return 0
}

// backoff doubles from 200ms and adds up to 50% jitter.
func backoff(attempt int) time.Duration {
	d := (200 * time.Millisecond) << attempt
	return d + rand.N(d/2+1)
}
