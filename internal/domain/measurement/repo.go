package measurement

import (
	"context"

	"github.com/google/uuid"
)

type MeasurementRepository interface {
	Create(ctx context.Context, m *Measurement) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Measurement, error)
}
