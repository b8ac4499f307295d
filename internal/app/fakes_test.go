package app_test

import (
	"context"
	"sync"
	"sync/atomic"

	"luxe_residences/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	list    []domain.Residence
	listErr error
	docs    map[string]domain.Residence
	getErr  error

	// when set, reads wait for release (or ctx when honorCtx is true)
	release  chan struct{}
	honorCtx bool

	listCalls atomic.Int32
	getCalls  atomic.Int32
}

func (f *fakeStore) wait(ctx context.Context) error {
	if f.release == nil {
		return nil
	}
	if !f.honorCtx {
		<-f.release
		return nil
	}
	select {
	case <-f.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeStore) ListResidences(ctx context.Context) ([]domain.Residence, error) {
	f.listCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Residence(nil), f.list...), nil
}

func (f *fakeStore) GetResidence(ctx context.Context, id string) (domain.Residence, error) {
	f.getCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return domain.Residence{}, err
	}
	if f.getErr != nil {
		return domain.Residence{}, f.getErr
	}
	r, ok := f.docs[id]
	if !ok {
		return domain.Residence{}, domain.ErrNotFound
	}
	return r, nil
}

type fakeWriter struct {
	mu     sync.Mutex
	put    map[string]int
	failOn string
}

func (w *fakeWriter) PutResidence(ctx context.Context, position int, r domain.Residence) error {
	if r.ID == w.failOn {
		return context.DeadlineExceeded
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.put == nil {
		w.put = map[string]int{}
	}
	w.put[r.ID] = position
	return nil
}

func residence(id string, sold bool) domain.Residence {
	return domain.Residence{
		ID:       id,
		Name:     id,
		Price:    "$1",
		Image:    "/" + id + ".jpg",
		Features: domain.Features{Beds: 1, Baths: 1, Sqft: 100},
		Location: "Somewhere",
		Sold:     sold,
	}
}
