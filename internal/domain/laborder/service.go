package laborder

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/optica/optica/internal/domain/measurement"
	"github.com/optica/optica/internal/domain/patient"
	"github.com/optica/optica/internal/domain/sale"
	"github.com/optica/optica/internal/platform/notification"
)

// Service drives the lab-order fulfillment screen: it aggregates the
// patient's data for review and advances the active order from open to
// completed exactly once, notifying the patient on the way.
type Service struct {
	patients     *patient.Service
	sales        *sale.Service
	measurements *measurement.Service
	dispatcher   *notification.Dispatcher
	logger       zerolog.Logger

	// mu serializes completion requests; completed remembers sale ids that
	// transitioned within this process so a double submit can never re-send
	// the pickup notification, even before the flag is re-read.
	mu        sync.Mutex
	completed map[uuid.UUID]bool
}

func NewService(
	patients *patient.Service,
	sales *sale.Service,
	measurements *measurement.Service,
	dispatcher *notification.Dispatcher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		patients:     patients,
		sales:        sales,
		measurements: measurements,
		dispatcher:   dispatcher,
		logger:       logger,
		completed:    make(map[uuid.UUID]bool),
	}
}

// Load builds the fulfillment view. The patient resolves first; the sale
// aggregation and the refraction lookup then run concurrently — neither
// ordering between them is guaranteed nor needed. If ctx is cancelled
// (screen torn down) or either load fails, no partial view is returned.
func (s *Service) Load(ctx context.Context, patientID uuid.UUID, targetDate sale.Date) (*View, error) {
	if patientID == uuid.Nil {
		return nil, ErrMissingPatientID
	}

	p, err := s.patients.Resolve(ctx, patientID)
	if err != nil {
		return nil, err
	}

	view := &View{Patient: p}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		active, pending, err := s.sales.Load(gctx, patientID, targetDate)
		if err != nil {
			return err
		}
		view.ActiveSale = active
		view.PendingSales = pending
		return nil
	})
	g.Go(func() error {
		m, err := s.measurements.ResolveLatest(gctx, patientID)
		if err != nil {
			return err
		}
		view.Measurement = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A load finishing after the screen is gone is stale. The backends may
	// not honor ctx themselves, so the caller's context is consulted here;
	// gctx cannot serve, errgroup cancels it on every Wait.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return view, nil
}

// Complete advances the view's active order to completed. Effects, in order:
// the pickup notification is dispatched, then the completion flag is
// persisted, then the sale leaves the pending set. The ordering is
// deliberate and matches the storefront workflow: if the write fails the
// notification has already gone out and is not rolled back (at-least-once
// notification, best-effort completion). The pending set is only pruned
// after a successful write.
func (s *Service) Complete(ctx context.Context, view *View, message string) (*View, error) {
	if view == nil || view.ActiveSale == nil || view.Patient == nil {
		return view, ErrMissingData
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active := view.ActiveSale
	if active.IsCompleted || s.completed[active.ID] {
		return view, ErrAlreadyCompleted
	}

	rec, err := s.dispatcher.Dispatch(ctx, view.Patient.PhoneNumber(), message)
	if err != nil {
		if errors.Is(err, notification.ErrMissingContact) {
			return view, err
		}
		// Dispatch is fire-and-forget: a failed handoff to the messaging
		// surface does not block completion.
		s.logger.Warn().Err(err).
			Str("sale_id", active.ID.String()).
			Msg("pickup notification failed")
	} else {
		s.logger.Info().
			Str("sale_id", active.ID.String()).
			Str("notification_id", rec.ID).
			Msg("pickup notification dispatched")
	}

	if err := s.sales.MarkCompleted(ctx, active.ID); err != nil {
		return view, err
	}

	s.completed[active.ID] = true
	active.IsCompleted = true

	updated := *view
	updated.PendingSales = withoutSale(view.PendingSales, active)
	return &updated, nil
}
