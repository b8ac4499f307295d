package mongoad

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"luxe_residences/internal/adapters/observability"
	"luxe_residences/internal/domain"
)

const (
	driver      = "mongo"
	pingTimeout = 5 * time.Second
)

// document is the stored shape: the residence plus its list position.
type document struct {
	domain.Residence `bson:",inline"`
	Position         int `bson:"position"`
}

type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect builds the client and pings the primary. A failed ping is only
// logged: reads will fail until the server is reachable, and the catalog
// serves sample data meanwhile.
func Connect(ctx context.Context, uri, database, collection string, timeout time.Duration) (*Store, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetTimeout(timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pctx, nil); err != nil {
		log.Warn().Err(err).Str("database", database).Msg("mongo ping failed")
	}
	return &Store{client: client, coll: client.Database(database).Collection(collection)}, nil
}

func (s *Store) ListResidences(ctx context.Context) (out []domain.Residence, err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "list", label(err), time.Since(start)) }()

	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out = make([]domain.Residence, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Residence)
	}
	return out, nil
}

func (s *Store) GetResidence(ctx context.Context, id string) (r domain.Residence, err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "get", label(err), time.Since(start)) }()

	var d document
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Residence{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Residence{}, err
	}
	return d.Residence, nil
}

func (s *Store) PutResidence(ctx context.Context, position int, r domain.Residence) (err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "put", label(err), time.Since(start)) }()

	_, err = s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: r.ID}},
		document{Residence: r, Position: position},
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
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
