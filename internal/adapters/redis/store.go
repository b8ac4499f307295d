package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"luxe_residences/internal/adapters/observability"
	"luxe_residences/internal/domain"
)

const driver = "redis"

// Store keeps one JSON document per residence under {prefix}:{id} and the
// collection order in the sorted set {prefix}:index.
type Store struct {
	c      *redis.Client
	prefix string
}

func New(addr, pass string, db int, collection string) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), collection)
}

func NewWithClient(c *redis.Client, collection string) *Store {
	return &Store{c: c, prefix: collection}
}

func (s *Store) docKey(id string) string { return s.prefix + ":" + id }
func (s *Store) indexKey() string        { return s.prefix + ":index" }

func (s *Store) ListResidences(ctx context.Context) (out []domain.Residence, err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "list", label(err), time.Since(start)) }()

	ids, err := s.c.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Residence{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(id)
	}
	vals, err := s.c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out = make([]domain.Residence, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue // indexed but document gone
		}
		var r domain.Residence
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		r.ID = ids[i]
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) GetResidence(ctx context.Context, id string) (r domain.Residence, err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "get", label(err), time.Since(start)) }()

	b, err := s.c.Get(ctx, s.docKey(id)).Bytes()
	if err == redis.Nil {
		return domain.Residence{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Residence{}, err
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return domain.Residence{}, fmt.Errorf("decode %s: %w", s.docKey(id), err)
	}
	r.ID = id
	return r, nil
}

func (s *Store) PutResidence(ctx context.Context, position int, r domain.Residence) (err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "put", label(err), time.Since(start)) }()

	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = s.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.docKey(r.ID), b, 0)
		p.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(position), Member: r.ID})
		return nil
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

func (s *Store) Close() error { return s.c.Close() }

func label(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
