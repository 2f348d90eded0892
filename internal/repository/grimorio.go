package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grimoire/internal/cache"
	"grimoire/internal/models"
	"grimoire/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// GrimorioRepository defines persistence operations for grimorios.
type GrimorioRepository interface {
	List(ctx context.Context) ([]models.Grimorio, error)
	ListWithRequests(ctx context.Context) ([]models.Grimorio, error)
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, grimorios []models.Grimorio) error
}

type grimorioRepository struct {
	db *gorm.DB
}

// NewGrimorioRepository returns a new GrimorioRepository implementation.
func NewGrimorioRepository(db *gorm.DB) GrimorioRepository {
	return &grimorioRepository{db: db}
}

// List returns the weight snapshot ordered by tier, then id. Grimorios are
// static seed data so the snapshot is cached.
func (r *grimorioRepository) List(ctx context.Context) ([]models.Grimorio, error) {
	grimorios := []models.Grimorio{}

	err := cache.Aside(ctx, cache.GrimoriosKey, &grimorios, cache.GrimoriosTTL, func() error {
		defer observability.TrackQuery("list", "grimorios")()
		if err := r.db.WithContext(ctx).
			Order("tipo_trebol ASC").Order("id ASC").
			Find(&grimorios).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grimorios, nil
}

// ListWithRequests returns every grimorio with the requests bound to it.
func (r *grimorioRepository) ListWithRequests(ctx context.Context) ([]models.Grimorio, error) {
	defer observability.TrackQuery("list_with_requests", "grimorios")()

	grimorios := []models.Grimorio{}
	if err := r.db.WithContext(ctx).
		Preload("Requests", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Order("tipo_trebol ASC").Order("id ASC").
		Find(&grimorios).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return grimorios, nil
}

func (r *grimorioRepository) Count(ctx context.Context) (int64, error) {
	defer observability.TrackQuery("count", "grimorios")()

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Grimorio{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// CreateBatch inserts grimorios in one statement. A unique violation on
// tipo_trebol is reported as ErrDuplicate.
func (r *grimorioRepository) CreateBatch(ctx context.Context, grimorios []models.Grimorio) error {
	defer observability.TrackQuery("create_batch", "grimorios")()

	if len(grimorios) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit("Requests").Create(&grimorios).Error; err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.GrimoriosKey)
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL unique violation SQLSTATE 23505
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
