package service

import (
	"context"
	"errors"
	"slices"

	"grimoire/internal/middleware"
	"grimoire/internal/models"
	"grimoire/internal/repository"
)

// GrimorioService installs the grimorio catalog.
type GrimorioService struct {
	repo    repository.GrimorioRepository
	catalog []models.Grimorio
}

// NewGrimorioService returns a service seeding catalog.
func NewGrimorioService(repo repository.GrimorioRepository, catalog []models.Grimorio) *GrimorioService {
	return &GrimorioService{repo: repo, catalog: slices.Clone(catalog)}
}

// SeedGrimorios inserts the catalog when no grimorio exists yet. It reports
// whether rows were inserted; a concurrent seeder winning the race is not an error.
func (s *GrimorioService) SeedGrimorios(ctx context.Context) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	rows := slices.Clone(s.catalog)
	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			middleware.Logger.InfoContext(ctx, "grimorio catalog already seeded concurrently")
			return false, nil
		}
		return false, err
	}

	middleware.Logger.InfoContext(ctx, "grimorio catalog seeded", "count", len(rows))
	return true, nil
}
