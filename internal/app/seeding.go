package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"luxe_residences/internal/domain"
)

// SeedService loads residences into a writable store. It is operator
// tooling; the web service itself never writes.
type SeedService struct {
	w domain.ResidenceWriter
}

func NewSeedService(w domain.ResidenceWriter) *SeedService {
	return &SeedService{w: w}
}

// Seed writes every residence, at most workers at a time, keeping each
// record's list position. It returns the number written and the joined
// errors of the ones that failed.
func (s *SeedService) Seed(ctx context.Context, items []domain.Residence, workers int) (int, error) {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
		ok   int
	)
	for pos, r := range items {
		if !r.Valid() {
			mu.Lock()
			errs = append(errs, fmt.Errorf("residence #%d (%q) is invalid", pos, r.ID))
			mu.Unlock()
			continue
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func(pos int, r domain.Residence) {
			defer wg.Done()
			defer sem.Release(1)

			err := s.w.PutResidence(ctx, pos, r)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Str("id", r.ID).Err(err).Msg("seed failed")
				errs = append(errs, fmt.Errorf("put %q: %w", r.ID, err))
				return
			}
			ok++
			log.Info().Str("id", r.ID).Int("position", pos).Msg("seed ok")
		}(pos, r)
	}
	wg.Wait()

	return ok, errors.Join(errs...)
}
