// Package service implements the request lifecycle and grimorio catalog operations.
package service

import (
	"context"
	"time"

	"grimoire/internal/assignment"
	"grimoire/internal/cache"
	"grimoire/internal/middleware"
	"grimoire/internal/models"
	"grimoire/internal/observability"
	"grimoire/internal/repository"
	"grimoire/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// EventPublisher receives an event after every successful status transition.
type EventPublisher interface {
	PublishReviewed(ctx context.Context, ev cache.ReviewedEvent) error
}

// RequestService owns the request lifecycle: creation, edits, status
// transitions (with grimorio assignment on approval) and deletion.
type RequestService struct {
	requests  repository.RequestRepository
	grimorios repository.GrimorioRepository
	picker    *assignment.Picker
	events    EventPublisher
}

// NewRequestService wires a RequestService. events may be nil.
func NewRequestService(
	requests repository.RequestRepository,
	grimorios repository.GrimorioRepository,
	picker *assignment.Picker,
	events EventPublisher,
) *RequestService {
	return &RequestService{
		requests:  requests,
		grimorios: grimorios,
		picker:    picker,
		events:    events,
	}
}

// Create persists a new request. An unknown affinity is an error and nothing
// is stored; an invalid name or last name is stored as Rechazado.
func (s *RequestService) Create(ctx context.Context, in validation.CreateInput) (_ *models.Request, err error) {
	ctx, span := observability.StartSpan(ctx, "request_service", "create",
		attribute.String("affinity", in.Affinity))
	defer func() { span.End(err) }()

	affinity, ok := models.ParseAffinity(in.Affinity)
	if !ok {
		return nil, models.NewInvalidAffinityError(in.Affinity)
	}

	status := models.RequestStatusPending
	if !validation.ValidateNameFields(in.Name, in.LastName) {
		status = models.RequestStatusRejected
	}

	req := &models.Request{
		Name:           in.Name,
		LastName:       in.LastName,
		Identification: in.Identification,
		Age:            in.Age,
		Affinity:       affinity,
		Status:         status,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	observability.RequestsCreated.WithLabelValues(string(req.Status)).Inc()
	span.AddAttributes(attribute.String("request.id", req.ID), attribute.String("status", string(req.Status)))
	return req, nil
}

// Get returns one request with its grimorio.
func (s *RequestService) Get(ctx context.Context, id string) (*models.Request, error) {
	return s.requests.GetByID(ctx, id)
}

// List returns every request with its grimorio.
func (s *RequestService) List(ctx context.Context) ([]models.Request, error) {
	return s.requests.List(ctx)
}

// Update changes the fields present in in. Name fields are checked before the
// affinity; any failure leaves the stored request untouched.
func (s *RequestService) Update(ctx context.Context, id string, in validation.UpdateInput) (_ *models.Request, err error) {
	ctx, span := observability.StartSpan(ctx, "request_service", "update",
		attribute.String("request.id", id))
	defer func() { span.End(err) }()

	current, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if (in.Name != nil && !validation.ValidName(*in.Name)) ||
		(in.LastName != nil && !validation.ValidName(*in.LastName)) {
		return nil, models.NewInvalidRequestError()
	}

	fields := map[string]any{}
	if in.Affinity != nil {
		affinity, ok := models.ParseAffinity(*in.Affinity)
		if !ok {
			return nil, models.NewInvalidAffinityError(*in.Affinity)
		}
		fields["affinity"] = affinity
	}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	if in.Identification != nil {
		fields["identification"] = *in.Identification
	}
	if in.Age != nil {
		fields["age"] = *in.Age
	}
	if len(fields) == 0 {
		return current, nil
	}

	if err := s.requests.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.requests.GetByID(ctx, id)
}

// UpdateStatus moves request id to the status labelled rawStatus. Approving a
// request without a grimorio draws one; if no grimorio can be drawn the
// request keeps its previous status.
func (s *RequestService) UpdateStatus(ctx context.Context, id, rawStatus string) (_ *models.Request, err error) {
	ctx, span := observability.StartSpan(ctx, "request_service", "update_status",
		attribute.String("request.id", id), attribute.String("status", rawStatus))
	defer func() { span.End(err) }()

	status, ok := models.ParseRequestStatus(rawStatus)
	if !ok {
		return nil, models.NewInvalidStatusError(rawStatus)
	}

	var pick repository.PickFunc
	var picked *models.Grimorio
	if status == models.RequestStatusApproved {
		catalog, err := s.grimorios.List(ctx)
		if err != nil {
			return nil, err
		}
		pick = func() (models.Grimorio, error) {
			g, err := s.picker.Pick(catalog)
			if err != nil {
				return g, err
			}
			picked = &g
			return g, nil
		}
	}

	req, err := s.requests.Transition(ctx, id, status, pick)
	if err != nil {
		if models.HasCode(err, models.CodeAssignmentImpossible) {
			observability.AssignmentFailures.Inc()
		}
		return nil, err
	}

	observability.StatusTransitions.WithLabelValues(string(status)).Inc()
	if picked != nil {
		observability.RecordAssignment(picked.TipoTrebol)
		span.AddAttributes(attribute.Int("grimorio.tipo_trebol", picked.TipoTrebol))
	}

	s.publishReviewed(ctx, req)
	return req, nil
}

func (s *RequestService) publishReviewed(ctx context.Context, req *models.Request) {
	if s.events == nil {
		return
	}
	reviewer, _ := ctx.Value(middleware.ReviewerIDKey).(string)
	ev := cache.ReviewedEvent{
		RequestID:  req.ID,
		Status:     string(req.Status),
		GrimorioID: req.GrimorioID,
		ReviewerID: reviewer,
		ReviewedAt: time.Now().UTC(),
	}
	if err := s.events.PublishReviewed(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish reviewed event",
			"request_id", req.ID, "error", err.Error())
	}
}

// Delete removes request id. Grimorios are never deleted with it.
func (s *RequestService) Delete(ctx context.Context, id string) error {
	return s.requests.Delete(ctx, id)
}

// ListAssignments returns every grimorio with the requests bound to it.
func (s *RequestService) ListAssignments(ctx context.Context) ([]models.Grimorio, error) {
	return s.grimorios.ListWithRequests(ctx)
}
