package sale

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	sales SaleRepository
}

func NewService(sales SaleRepository) *Service {
	return &Service{sales: sales}
}

// firstOnDate is the tie-break policy for active-order selection: the first
// sale in fetch order whose date matches wins. More than one sale on the
// same day is unusual but possible; the store has no secondary sort key, so
// fetch order decides. A future recency rule only changes this function.
func firstOnDate(items []*Sale, target Date) *Sale {
	for _, s := range items {
		if s.Date.SameDay(target) {
			return s
		}
	}
	return nil
}

// Load aggregates the patient's lab orders for the fulfillment screen:
// active is the sale matching targetDate (nil when none — the screen renders
// no order details), pending is the full fetched sequence. Completed sales
// are NOT filtered here; the completion workflow prunes its own set after a
// completion event. On storage failure nothing partial is returned.
func (s *Service) Load(ctx context.Context, patientID uuid.UUID, targetDate Date) (*Sale, []*Sale, error) {
	items, err := s.sales.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}
	return firstOnDate(items, targetDate), items, nil
}

func (s *Service) Create(ctx context.Context, sl *Sale) error {
	if err := sl.Validate(); err != nil {
		return err
	}
	return s.sales.Create(ctx, sl)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return s.sales.GetByID(ctx, id)
}

// MarkCompleted persists the completion flag. The fulfillment workflow is
// the only caller; nothing else writes sales after entry.
func (s *Service) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return s.sales.MarkCompleted(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Sale, error) {
	return s.sales.ListByPatient(ctx, patientID)
}

func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*Sale, int, error) {
	return s.sales.ListPending(ctx, limit, offset)
}
