package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"luxe_residences/internal/adapters/observability"
	"luxe_residences/internal/domain"
)

const FallbackAdvisory = "Could not connect to database. Using sample data."

type ListResult struct {
	Residences   []domain.Residence
	FromFallback bool
	Advisory     string
}

type CatalogService struct {
	store domain.ResidenceStore
}

func NewCatalogService(s domain.ResidenceStore) *CatalogService {
	return &CatalogService{store: s}
}

// ListResidences never fails: any store error is absorbed and the sample
// data set is returned together with an advisory for display.
func (s *CatalogService) ListResidences(ctx context.Context) ListResult {
	rs, err := s.store.ListResidences(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Debug().Err(err).Msg("residence list aborted")
		} else {
			log.Warn().Err(err).Msg("residence list failed, serving sample data")
			observability.ObserveFallback()
		}
		return ListResult{Residences: FallbackResidences(), FromFallback: true, Advisory: FallbackAdvisory}
	}
	out := sanitize(rs)
	log.Info().Int("fetched", len(rs)).Int("kept", len(out)).Msg("residence list ok")
	return ListResult{Residences: out}
}

// GetResidence does not fall back to sample data; callers distinguish
// domain.ErrNotFound from transport failures.
func (s *CatalogService) GetResidence(ctx context.Context, id string) (domain.Residence, error) {
	if id == "" {
		return domain.Residence{}, domain.ErrNotFound
	}
	r, err := s.store.GetResidence(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		log.Info().Str("id", id).Msg("residence not found")
		return domain.Residence{}, domain.ErrNotFound
	case err != nil:
		log.Warn().Str("id", id).Err(err).Msg("residence fetch failed")
		return domain.Residence{}, fmt.Errorf("get residence %q: %w", id, err)
	}
	if r.ID == "" {
		r.ID = id
	}
	log.Info().Str("id", id).Msg("residence fetch ok")
	return r, nil
}

// sanitize drops records without an id or with negative features and keeps
// the first occurrence of a duplicated id. Order is preserved.
func sanitize(in []domain.Residence) []domain.Residence {
	out := make([]domain.Residence, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, r := range in {
		if !r.Valid() {
			log.Warn().Str("id", r.ID).Msg("skipping invalid residence document")
			continue
		}
		if _, dup := seen[r.ID]; dup {
			log.Warn().Str("id", r.ID).Msg("skipping duplicate residence document")
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
