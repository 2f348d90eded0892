// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"grimoire/internal/cache"
	"grimoire/internal/models"
	"grimoire/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PickFunc chooses the grimorio bound to a request being approved.
type PickFunc func() (models.Grimorio, error)

// RequestRepository defines persistence operations for requests.
type RequestRepository interface {
	GetByID(ctx context.Context, id string) (*models.Request, error)
	List(ctx context.Context) ([]models.Request, error)
	Create(ctx context.Context, req *models.Request) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	Transition(ctx context.Context, id string, status models.RequestStatus, pick PickFunc) (*models.Request, error)
	Delete(ctx context.Context, id string) error
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository returns a new RequestRepository implementation.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	var req models.Request

	err := cache.Aside(ctx, cache.RequestKey(id), &req, cache.RequestTTL, func() error {
		defer observability.TrackQuery("get", "requests")()
		return r.load(r.db.WithContext(ctx), id, &req)
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) load(db *gorm.DB, id string, req *models.Request) error {
	if err := db.Preload("Grimorio").First(req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Request", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *requestRepository) List(ctx context.Context) ([]models.Request, error) {
	defer observability.TrackQuery("list", "requests")()

	requests := []models.Request{}
	if err := r.db.WithContext(ctx).
		Preload("Grimorio").
		Order("created_at ASC").Order("id ASC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *requestRepository) Create(ctx context.Context, req *models.Request) error {
	defer observability.TrackQuery("create", "requests")()

	if err := r.db.WithContext(ctx).Omit("Grimorio").Create(req).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateFields writes the given columns of request id; updated_at is refreshed by GORM.
func (r *requestRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	defer observability.TrackQuery("update", "requests")()

	result := r.db.WithContext(ctx).Model(&models.Request{ID: id}).Updates(fields)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Request", id)
	}
	cache.InvalidateRequest(ctx, id)
	return nil
}

// Transition sets the status of request id inside one transaction. When the
// target is Aprobado and no grimorio is bound yet, pick chooses one; a pick
// failure rolls the status change back.
func (r *requestRepository) Transition(
	ctx context.Context, id string, status models.RequestStatus, pick PickFunc,
) (*models.Request, error) {
	defer observability.TrackQuery("transition", "requests")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked := tx
		if tx.Dialector.Name() == "postgres" {
			locked = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var current models.Request
		if err := locked.First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Request", id)
			}
			return err
		}

		updates := map[string]any{"status": status}
		if status == models.RequestStatusApproved && current.GrimorioID == nil {
			grimorio, err := pick()
			if err != nil {
				return models.NewAssignmentImpossibleError(err)
			}
			updates["grimorio_id"] = grimorio.ID
		}

		return tx.Model(&models.Request{ID: id}).Updates(updates).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateRequest(ctx, id)

	var req models.Request
	if err := r.load(r.db.WithContext(ctx), id, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", "requests")()

	result := r.db.WithContext(ctx).Delete(&models.Request{}, "id = ?", id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Request", id)
	}
	cache.InvalidateRequest(ctx, id)
	return nil
}
