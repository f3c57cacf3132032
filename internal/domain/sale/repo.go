package sale

import (
	"context"

	"github.com/google/uuid"
)

type SaleRepository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	// ListByPatient returns all of the patient's sales joined with lens type
	// and branch name, completed ones included.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Sale, error)
	// MarkCompleted sets is_completed. The completion workflow is the only
	// caller.
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	ListPending(ctx context.Context, limit, offset int) ([]*Sale, int, error)
}
