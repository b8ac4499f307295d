// Package stores builds the configured document store driver.
package stores

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"luxe_residences/internal/adapters/firestore"
	mongoad "luxe_residences/internal/adapters/mongo"
	redisad "luxe_residences/internal/adapters/redis"
	"luxe_residences/internal/domain"
	"luxe_residences/internal/shared"
	mysqlrepo "luxe_residences/internal/storage/mysql"
)

// Store is what a driver hands back: always readable, sometimes writable.
type Store interface {
	domain.ResidenceStore
	io.Closer
}

type nopCloser struct{ domain.ResidenceStore }

func (nopCloser) Close() error { return nil }

// unavailable stands in for a driver that could not be configured; every
// read fails, so listings are served from the sample collection.
type unavailable struct{ err error }

func (u unavailable) ListResidences(context.Context) ([]domain.Residence, error) { return nil, u.err }

func (u unavailable) GetResidence(context.Context, string) (domain.Residence, error) {
	return domain.Residence{}, u.err
}

func (unavailable) Close() error { return nil }

type dbCloser struct {
	*mysqlrepo.Repo
	db *sql.DB
}

func (c dbCloser) Close() error { return c.db.Close() }

// Open connects the driver named by cfg.StoreDriver. Connection problems are
// not fatal for read drivers: the catalog falls back to sample data.
func Open(ctx context.Context, cfg shared.Config) (Store, error) {
	switch cfg.StoreDriver {
	case "firestore":
		cl, err := firestore.New(firestore.Options{
			BaseURL:    cfg.FirestoreBase,
			Project:    cfg.FirestoreProject,
			Database:   cfg.FirestoreDatabase,
			Collection: cfg.StoreCollection,
			APIKey:     cfg.FirestoreAPIKey,
			RPS:        cfg.StoreRPS,
			MaxRetries: cfg.StoreMaxRetries,
			Timeout:    cfg.StoreTimeout,
		})
		if err != nil {
			log.Warn().Err(err).Msg("firestore client not configured")
			return unavailable{err: err}, nil
		}
		return nopCloser{cl}, nil

	case "mongo":
		s, err := mongoad.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.StoreCollection, cfg.StoreTimeout)
		if err != nil {
			log.Warn().Err(err).Msg("mongo client not configured")
			return unavailable{err: err}, nil
		}
		return s, nil

	case "redis":
		s := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.StoreCollection)
		if err := s.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		return s, nil

	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Warn().Err(err).Msg("mysql ping failed")
		}
		return dbCloser{Repo: mysqlrepo.New(db), db: db}, nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

// Ready reports the configuration error behind a store that can never
// serve reads, or nil.
func Ready(s Store) error {
	if u, ok := s.(unavailable); ok {
		return u.err
	}
	return nil
}

// Writer returns the seeding side of s, if the driver has one.
func Writer(s Store) (domain.ResidenceWriter, bool) {
	w, ok := s.(domain.ResidenceWriter)
	return w, ok
}

// Migrate prepares the schema for drivers that need one.
func Migrate(ctx context.Context, s Store) error {
	if m, ok := s.(interface{ Migrate(context.Context) error }); ok {
		return m.Migrate(ctx)
	}
	return nil
}
