package service

import (
	"context"

	"grimoire/internal/cache"
	"grimoire/internal/models"
	"grimoire/internal/repository"
)

// requestRepoStub is a stub for repository.RequestRepository.
type requestRepoStub struct {
	getByIDFn      func(context.Context, string) (*models.Request, error)
	listFn         func(context.Context) ([]models.Request, error)
	createFn       func(context.Context, *models.Request) error
	updateFieldsFn func(context.Context, string, map[string]any) error
	transitionFn   func(context.Context, string, models.RequestStatus, repository.PickFunc) (*models.Request, error)
	deleteFn       func(context.Context, string) error
}

func (s *requestRepoStub) GetByID(ctx context.Context, id string) (*models.Request, error) {
	return s.getByIDFn(ctx, id)
}
func (s *requestRepoStub) List(ctx context.Context) ([]models.Request, error) {
	return s.listFn(ctx)
}
func (s *requestRepoStub) Create(ctx context.Context, req *models.Request) error {
	return s.createFn(ctx, req)
}
func (s *requestRepoStub) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *requestRepoStub) Transition(
	ctx context.Context, id string, status models.RequestStatus, pick repository.PickFunc,
) (*models.Request, error) {
	return s.transitionFn(ctx, id, status, pick)
}
func (s *requestRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func noopRequestRepo() *requestRepoStub {
	return &requestRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.Request, error) {
			return &models.Request{ID: id}, nil
		},
		listFn:         func(context.Context) ([]models.Request, error) { return []models.Request{}, nil },
		createFn:       func(context.Context, *models.Request) error { return nil },
		updateFieldsFn: func(context.Context, string, map[string]any) error { return nil },
		transitionFn: func(_ context.Context, id string, status models.RequestStatus, _ repository.PickFunc) (*models.Request, error) {
			return &models.Request{ID: id, Status: status}, nil
		},
		deleteFn: func(context.Context, string) error { return nil },
	}
}

// grimorioRepoStub is a stub for repository.GrimorioRepository.
type grimorioRepoStub struct {
	listFn             func(context.Context) ([]models.Grimorio, error)
	listWithRequestsFn func(context.Context) ([]models.Grimorio, error)
	countFn            func(context.Context) (int64, error)
	createBatchFn      func(context.Context, []models.Grimorio) error
}

func (s *grimorioRepoStub) List(ctx context.Context) ([]models.Grimorio, error) {
	return s.listFn(ctx)
}
func (s *grimorioRepoStub) ListWithRequests(ctx context.Context) ([]models.Grimorio, error) {
	return s.listWithRequestsFn(ctx)
}
func (s *grimorioRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
func (s *grimorioRepoStub) CreateBatch(ctx context.Context, grimorios []models.Grimorio) error {
	return s.createBatchFn(ctx, grimorios)
}

func noopGrimorioRepo() *grimorioRepoStub {
	return &grimorioRepoStub{
		listFn:             func(context.Context) ([]models.Grimorio, error) { return nil, nil },
		listWithRequestsFn: func(context.Context) ([]models.Grimorio, error) { return nil, nil },
		countFn:            func(context.Context) (int64, error) { return 0, nil },
		createBatchFn:      func(context.Context, []models.Grimorio) error { return nil },
	}
}

type publisherStub struct {
	events []cache.ReviewedEvent
	err    error
}

func (p *publisherStub) PublishReviewed(_ context.Context, ev cache.ReviewedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func ptr[T any](v T) *T { return &v }
