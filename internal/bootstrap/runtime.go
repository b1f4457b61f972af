// Package bootstrap wires the storage dependencies shared by the server and seed commands.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"analytics/internal/config"
	"analytics/internal/database"
	"analytics/internal/geo"
	"analytics/internal/kv"
	"analytics/internal/repository"
	"analytics/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedProfile ensures the demo profile and its posts exist.
	SeedProfile bool
}

// InitRuntime connects to the database and Redis, then optionally seeds.
// The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := kv.Connect(ctx, cfg.RedisURL)

	if opts.SeedProfile {
		if _, _, err := seed.NewSeeder(repository.NewStore(db), 0).Profile(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to seed profile: %w", err)
		}
	}

	return db, r, nil
}

// GeoClient builds the geolocation client from configuration.
func GeoClient(cfg *config.Config) *geo.Client {
	return geo.NewClient(geo.Config{
		Enabled:  cfg.GeoEnabled,
		Endpoint: cfg.GeoEndpoint,
		Timeout:  time.Duration(cfg.GeoTimeoutSeconds) * time.Second,
	})
}
