package shared

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string        `env:"APP_ENV" envDefault:"prod"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr    string        `env:"METRICS_ADDR"`
	StaticDir      string        `env:"STATIC_DIR" envDefault:"./public"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	MapsEmbedKey   string        `env:"MAPS_EMBED_KEY"`

	// document store
	StoreDriver     string        `env:"STORE_DRIVER" envDefault:"firestore"` // firestore|mongo|redis|mysql
	StoreCollection string        `env:"STORE_COLLECTION" envDefault:"residences"`
	StoreRPS        int           `env:"STORE_RPS" envDefault:"5"`
	StoreMaxRetries int           `env:"STORE_MAX_RETRIES" envDefault:"0"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"20s"`

	FirestoreBase     string `env:"FIRESTORE_BASE_URL" envDefault:"https://firestore.googleapis.com/v1"`
	FirestoreProject  string `env:"FIRESTORE_PROJECT"`
	FirestoreDatabase string `env:"FIRESTORE_DATABASE" envDefault:"(default)"`
	FirestoreAPIKey   string `env:"FIRESTORE_API_KEY"`

	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"residences"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	MySQLDSN string `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/residences?parseTime=true&charset=utf8mb4,utf8&loc=UTC"`

	SeedWorkers int `env:"SEED_WORKERS" envDefault:"4"`
}

func Load() Config {
	var c Config
	if err := env.Parse(&c); err != nil {
		log.Fatal().Err(err).Msg("config parse failed")
	}
	if c.StoreDriver == "firestore" && c.FirestoreProject == "" {
		log.Warn().Msg("FIRESTORE_PROJECT is empty; listings will fall back to sample data")
	}
	if c.MapsEmbedKey == "" {
		log.Warn().Msg("MAPS_EMBED_KEY is empty")
	}
	return c
}
