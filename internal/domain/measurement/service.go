package measurement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	measurements MeasurementRepository
}

func NewService(measurements MeasurementRepository) *Service {
	return &Service{measurements: measurements}
}

// currentMeasurement is the tie-break policy for patients with more than one
// refraction record: the first row in fetch order wins. The store has no
// recency key, so fetch order is whatever the backend returns; if a real
// sort key is ever added, this is the only function that changes.
func currentMeasurement(items []*Measurement) *Measurement {
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

// ResolveLatest loads the patient's current refraction pair. A patient with
// no measurement yields (nil, nil) — the screen renders blank, it does not
// fail.
func (s *Service) ResolveLatest(ctx context.Context, patientID uuid.UUID) (*Measurement, error) {
	items, err := s.measurements.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return currentMeasurement(items), nil
}

func (s *Service) Create(ctx context.Context, m *Measurement) error {
	if m.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	return s.measurements.Create(ctx, m)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Measurement, error) {
	return s.measurements.ListByPatient(ctx, patientID)
}
