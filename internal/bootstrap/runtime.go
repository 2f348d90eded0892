// Package bootstrap opens the runtime dependencies shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"grimoire/internal/cache"
	"grimoire/internal/config"
	"grimoire/internal/database"
	"grimoire/internal/middleware"
	"grimoire/internal/models"
	"grimoire/internal/repository"
	"grimoire/internal/seed"
	"grimoire/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedGrimorios bool
}

// Runtime is what InitRuntime opened.
type Runtime struct {
	DB      *gorm.DB
	Redis   *redis.Client // nil when Redis is unreachable
	Catalog []models.Grimorio
}

// InitRuntime connects to the database and Redis, loads the grimorio catalog
// and optionally seeds it.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	catalog, err := Catalog(cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()

	if opts.SeedGrimorios {
		svc := service.NewGrimorioService(repository.NewGrimorioRepository(db), catalog)
		if _, err := svc.SeedGrimorios(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to seed grimorios: %w", err)
		}
	}

	return &Runtime{DB: db, Redis: rdb, Catalog: catalog}, nil
}

// Catalog returns the configured grimorio catalog, falling back to the built-in one.
func Catalog(cfg *config.Config) ([]models.Grimorio, error) {
	if cfg.CatalogPath == "" {
		return seed.DefaultCatalog(), nil
	}
	catalog, err := seed.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load grimorio catalog %s: %w", cfg.CatalogPath, err)
	}
	middleware.Logger.Info("loaded grimorio catalog", "path", cfg.CatalogPath, "tiers", len(catalog))
	return catalog, nil
}
