package patient

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	patients PatientRepository
}

func NewService(patients PatientRepository) *Service {
	return &Service{patients: patients}
}

// Resolve loads the one patient record the id denotes. Returns ErrNotFound
// when no record matches; storage failures come back wrapped.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// Search matches against full name and national id, the way the sales-entry
// screen looks patients up.
func (s *Service) Search(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error) {
	if term == "" {
		return s.patients.List(ctx, limit, offset)
	}
	return s.patients.Search(ctx, term, limit, offset)
}
