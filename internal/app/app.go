package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/bereketg/artisan-market/internal/config"
	"github.com/bereketg/artisan-market/internal/events"
	"github.com/bereketg/artisan-market/internal/payment/chapa"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// App bundles the process-wide resources: config, logger, Postgres, the
// Redis cart store, the event publisher and the payment provider client.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	DB        *sql.DB
	Redis     *redis.Client
	Publisher *events.KafkaPublisher
	Chapa     *chapa.Client
}

// NewApp opens and pings every backing service; a partial App is never
// returned.
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD environment variable is not set")
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.Database.User,
		dbPassword,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	publisher := events.NewKafkaPublisher(log, cfg.Kafka.Brokers, cfg.Kafka.Buffer)
	publisher.Start(ctx)

	chapaClient := chapa.NewClient(cfg.Chapa.BaseURL, cfg.Chapa.SecretKey, cfg.Chapa.Timeout)

	return &App{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Redis:     rdb,
		Publisher: publisher,
		Chapa:     chapaClient,
	}, nil
}

// Close releases the database and cache connections. The Kafka publisher is
// stopped by cancelling the context passed to NewApp.
func (a *App) Close() {
	_ = a.DB.Close()
	_ = a.Redis.Close()
}
