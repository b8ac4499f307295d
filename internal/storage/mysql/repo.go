package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"luxe_residences/internal/adapters/observability"
	"luxe_residences/internal/domain"
)

const driver = "mysql"

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Migrate creates the residences table when it does not exist yet.
func (r *Repo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createResidencesSQL)
	return err
}

func (r *Repo) PutResidence(ctx context.Context, position int, res domain.Residence) (err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "put", label(err), time.Since(start)) }()

	doc, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertResidenceSQL, res.ID, position, string(doc))
	return err
}

func (r *Repo) ListResidences(ctx context.Context) (out []domain.Residence, err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "list", label(err), time.Since(start)) }()

	rows, err := r.db.QueryContext(ctx, listResidencesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = []domain.Residence{}
	for rows.Next() {
		res, err := scanResidence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetResidence(ctx context.Context, id string) (res domain.Residence, err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "get", label(err), time.Since(start)) }()

	res, err = scanResidence(r.db.QueryRowContext(ctx, getResidenceSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Residence{}, domain.ErrNotFound
	}
	return res, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResidence(s scanner) (domain.Residence, error) {
	var (
		id  string
		doc []byte
	)
	if err := s.Scan(&id, &doc); err != nil {
		return domain.Residence{}, err
	}
	var res domain.Residence
	if err := json.Unmarshal(doc, &res); err != nil {
		return domain.Residence{}, fmt.Errorf("decode residence %q: %w", id, err)
	}
	// the key column wins over whatever the document says
	res.ID = id
	return res, nil
}

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
