package db

import (
	"context"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var newPool = pgxpool.New

// InitPostgres opens a pgx pool against databaseURL. A nil return means the
// service runs without persistence: reads go live, the refresh job is a
// no-op writer.
func InitPostgres(ctx context.Context, databaseURL string) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		log.Println("DATABASE_URL not set, running without Postgres")
		return nil
	}

	pool, err := newPool(ctx, databaseURL)
	if err != nil {
		log.Printf("failed to open postgres pool: %v", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		log.Printf("postgres unreachable, running without persistence: %v", err)
		pool.Close()
		return nil
	}

	log.Println("Connected to Postgres")
	return pool
}
