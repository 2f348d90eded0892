package seed

import (
	"context"
	"fmt"

	"grimoire/internal/models"
	"grimoire/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
)

// Lifecycle is the subset of the request service the factory drives.
type Lifecycle interface {
	Create(ctx context.Context, in validation.CreateInput) (*models.Request, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Request, error)
}

// Options controls a Populate run.
type Options struct {
	Count        int
	ApproveRatio float64 // share of pending requests approved afterwards
	RejectRatio  float64 // share of pending requests rejected afterwards
	Seed         int64   // 0 picks a random seed
}

// Summary counts what Populate produced, by final status.
type Summary map[models.RequestStatus]int

// Factory builds fake request payloads.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory returns a Factory. A zero seed is random.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// RequestInput builds a plausible create payload. Generated last names may
// contain spaces or apostrophes, which the service stores as Rechazado.
func (f *Factory) RequestInput(overrides ...func(*validation.CreateInput)) validation.CreateInput {
	affinities := make([]string, len(models.Affinities))
	for i, a := range models.Affinities {
		affinities[i] = string(a)
	}

	in := validation.CreateInput{
		Name:           f.faker.FirstName(),
		LastName:       f.faker.LastName(),
		Identification: f.faker.Numerify("ID########"),
		Age:            f.faker.Number(15, 60),
		Affinity:       f.faker.RandomString(affinities),
	}
	for _, o := range overrides {
		o(&in)
	}
	return in
}

// Populate creates opts.Count requests through svc and then reviews a share
// of the pending ones.
func (f *Factory) Populate(ctx context.Context, svc Lifecycle, opts Options) (Summary, error) {
	summary := Summary{}
	for i := 0; i < opts.Count; i++ {
		req, err := svc.Create(ctx, f.RequestInput())
		if err != nil {
			return summary, fmt.Errorf("create request %d: %w", i, err)
		}

		status := req.Status
		if status == models.RequestStatusPending {
			switch roll := f.faker.Float64Range(0, 1); {
			case roll < opts.ApproveRatio:
				status = models.RequestStatusApproved
			case roll < opts.ApproveRatio+opts.RejectRatio:
				status = models.RequestStatusRejected
			}
		}
		if status != req.Status {
			if _, err := svc.UpdateStatus(ctx, req.ID, string(status)); err != nil {
				return summary, fmt.Errorf("review request %s: %w", req.ID, err)
			}
		}
		summary[status]++
	}
	return summary, nil
}
