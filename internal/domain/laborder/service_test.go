package laborder

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/optica/optica/internal/domain/measurement"
	"github.com/optica/optica/internal/domain/patient"
	"github.com/optica/optica/internal/domain/sale"
	"github.com/optica/optica/internal/platform/notification"
)

// -- Mock repositories --

type mockPatientRepo struct {
	patients map[uuid.UUID]*patient.Patient
	calls    int
}

func (m *mockPatientRepo) Create(_ context.Context, p *patient.Patient) error {
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	m.calls++
	p, ok := m.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	var result []*patient.Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockPatientRepo) Search(_ context.Context, term string, limit, offset int) ([]*patient.Patient, int, error) {
	return m.List(context.Background(), limit, offset)
}

type mockSaleRepo struct {
	sales     []*sale.Sale
	listCalls int
	failList  bool
	failMark  bool
}

func (m *mockSaleRepo) Create(_ context.Context, s *sale.Sale) error {
	s.ID = uuid.New()
	m.sales = append(m.sales, s)
	return nil
}

func (m *mockSaleRepo) GetByID(_ context.Context, id uuid.UUID) (*sale.Sale, error) {
	for _, s := range m.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, sale.ErrNotFound
}

func (m *mockSaleRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*sale.Sale, error) {
	m.listCalls++
	if m.failList {
		return nil, fmt.Errorf("connection refused")
	}
	var result []*sale.Sale
	for _, s := range m.sales {
		if s.PatientID == patientID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockSaleRepo) MarkCompleted(_ context.Context, id uuid.UUID) error {
	if m.failMark {
		return fmt.Errorf("connection refused")
	}
	for _, s := range m.sales {
		if s.ID == id {
			s.IsCompleted = true
			return nil
		}
	}
	return sale.ErrNotFound
}

func (m *mockSaleRepo) ListPending(_ context.Context, limit, offset int) ([]*sale.Sale, int, error) {
	var result []*sale.Sale
	for _, s := range m.sales {
		if !s.IsCompleted {
			result = append(result, s)
		}
	}
	return result, len(result), nil
}

type mockMeasurementRepo struct {
	measurements []*measurement.Measurement
	listCalls    int
}

func (m *mockMeasurementRepo) Create(_ context.Context, mm *measurement.Measurement) error {
	mm.ID = uuid.New()
	m.measurements = append(m.measurements, mm)
	return nil
}

func (m *mockMeasurementRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*measurement.Measurement, error) {
	m.listCalls++
	var result []*measurement.Measurement
	for _, mm := range m.measurements {
		if mm.PatientID == patientID {
			result = append(result, mm)
		}
	}
	return result, nil
}

// -- Fixture --

type fixture struct {
	svc          *Service
	patientRepo  *mockPatientRepo
	saleRepo     *mockSaleRepo
	measureRepo  *mockMeasurementRepo
	sender       *notification.MockSender
	patientID    uuid.UUID
	patientPhone string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	patientRepo := &mockPatientRepo{patients: make(map[uuid.UUID]*patient.Patient)}
	saleRepo := &mockSaleRepo{}
	measureRepo := &mockMeasurementRepo{}
	sender := &notification.MockSender{}

	composer := notification.NewComposer("https://wa.me", "Pedido listo para retiro.")
	dispatcher := notification.NewDispatcher(composer, sender)

	svc := NewService(
		patient.NewService(patientRepo),
		sale.NewService(saleRepo),
		measurement.NewService(measureRepo),
		dispatcher,
		zerolog.Nop(),
	)

	phone := "5550001111"
	p := &patient.Patient{
		ID:         uuid.New(),
		FirstName:  "Maria",
		LastName:   "Lopez",
		NationalID: "0912345678",
		Phone:      &phone,
	}
	patientRepo.patients[p.ID] = p

	return &fixture{
		svc:          svc,
		patientRepo:  patientRepo,
		saleRepo:     saleRepo,
		measureRepo:  measureRepo,
		sender:       sender,
		patientID:    p.ID,
		patientPhone: phone,
	}
}

func (f *fixture) addSale(t *testing.T, date string, completed bool) *sale.Sale {
	t.Helper()
	d, err := sale.ParseDate(date)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", date, err)
	}
	s := &sale.Sale{
		ID:          uuid.New(),
		PatientID:   f.patientID,
		BranchID:    uuid.New(),
		Date:        d,
		IsCompleted: completed,
	}
	f.saleRepo.sales = append(f.saleRepo.sales, s)
	return s
}

func mustDate(t *testing.T, s string) sale.Date {
	t.Helper()
	d, err := sale.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

// -- Load --

func TestLoad_MissingPatientID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Load(context.Background(), uuid.Nil, mustDate(t, "2024-01-15"))
	if !errors.Is(err, ErrMissingPatientID) {
		t.Fatalf("expected ErrMissingPatientID, got %v", err)
	}
	if f.patientRepo.calls != 0 {
		t.Error("no backend call expected for a missing id")
	}
}

func TestLoad_PatientNotFound_SkipsOtherLoads(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Load(context.Background(), uuid.New(), mustDate(t, "2024-01-15"))
	if !errors.Is(err, patient.ErrNotFound) {
		t.Fatalf("expected patient.ErrNotFound, got %v", err)
	}
	if f.saleRepo.listCalls != 0 || f.measureRepo.listCalls != 0 {
		t.Error("sale/measurement loads must not run when the patient does not resolve")
	}
}

func TestLoad_ActiveSaleSelectedByDate(t *testing.T) {
	f := newFixture(t)
	f.addSale(t, "2024-01-10", false)
	want := f.addSale(t, "2024-01-15", false)

	view, err := f.svc.Load(context.Background(), f.patientID, mustDate(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if view.ActiveSale == nil || view.ActiveSale.ID != want.ID {
		t.Fatalf("expected active sale %s, got %+v", want.ID, view.ActiveSale)
	}
	if len(view.PendingSales) != 2 {
		t.Errorf("expected both sales in the pending list, got %d", len(view.PendingSales))
	}
}

func TestLoad_NoDateMatch(t *testing.T) {
	f := newFixture(t)
	f.addSale(t, "2024-01-10", false)

	view, err := f.svc.Load(context.Background(), f.patientID, mustDate(t, "2024-02-01"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if view.ActiveSale != nil {
		t.Errorf("expected no active sale, got %+v", view.ActiveSale)
	}
	if len(view.PendingSales) != 1 {
		t.Errorf("pending list should still carry the fetched sales")
	}
}

func TestLoad_MultipleSalesSameDate_FirstWins(t *testing.T) {
	f := newFixture(t)
	first := f.addSale(t, "2024-01-15", false)
	f.addSale(t, "2024-01-15", false)

	view, err := f.svc.Load(context.Background(), f.patientID, mustDate(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if view.ActiveSale.ID != first.ID {
		t.Errorf("expected the first sale in fetch order to win the tie-break")
	}
}

func TestLoad_NoMeasurementIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.addSale(t, "2024-01-15", false)

	view, err := f.svc.Load(context.Background(), f.patientID, mustDate(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if view.Measurement != nil {
		t.Errorf("expected nil measurement for a patient without rx records")
	}
}

func TestLoad_SaleFetchFailure_NoPartialView(t *testing.T) {
	f := newFixture(t)
	f.saleRepo.failList = true

	view, err := f.svc.Load(context.Background(), f.patientID, mustDate(t, "2024-01-15"))
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if view != nil {
		t.Error("no partial view may be returned on failure")
	}
}

func TestLoad_CancelledContext_DiscardsView(t *testing.T) {
	f := newFixture(t)
	f.addSale(t, "2024-01-15", false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The mock repos ignore ctx and answer anyway, standing in for a result
	// that lands after the screen was torn down. The stale view must be
	// discarded, never applied.
	view, err := f.svc.Load(ctx, f.patientID, mustDate(t, "2024-01-15"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if view != nil {
		t.Errorf("no view may survive a cancelled load, got %+v", view)
	}
}

// -- Complete --

func TestComplete_Succeeds(t *testing.T) {
	f := newFixture(t)
	f.addSale(t, "2024-01-10", false)
	active := f.addSale(t, "2024-01-15", false)

	view, err := f.svc.Load(context.Background(), f.patientID, mustDate(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	updated, err := f.svc.Complete(context.Background(), view, "")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if len(updated.PendingSales) != 1 {
		t.Fatalf("expected 1 pending sale after completion, got %d", len(updated.PendingSales))
	}
	if updated.PendingSales[0].Date.String() != "2024-01-10" {
		t.Errorf("wrong sale removed from the pending set")
	}

	stored, _ := f.saleRepo.GetByID(context.Background(), active.ID)
	if !stored.IsCompleted {
		t.Error("completion flag was not persisted")
	}

	calls := f.sender.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(calls))
	}
	if calls[0].Recipient != f.patientPhone {
		t.Errorf("notification sent to %q, want %q", calls[0].Recipient, f.patientPhone)
	}
	if calls[0].Message != "Pedido listo para retiro." {
		t.Errorf("empty message must fall back to the default, got %q", calls[0].Message)
	}
}

func TestComplete_MissingActiveSale(t *testing.T) {
	f := newFixture(t)
	f.addSale(t, "2024-01-10", false)

	view, err := f.svc.Load(context.Background(), f.patientID, mustDate(t, "2024-02-01"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, err = f.svc.Complete(context.Background(), view, "")
	if !errors.Is(err, ErrMissingData) {
		t.Fatalf("expected ErrMissingData, got %v", err)
	}
	if len(view.PendingSales) != 1 {
		t.Error("pending set must be unchanged")
	}
	if len(f.sender.Calls()) != 0 {
		t.Error("no notification may be sent without an active sale")
	}
}

func TestComplete_Twice_AlreadyCompleted(t *testing.T) {
	f := newFixture(t)
	f.addSale(t, "2024-01-15", false)

	view, err := f.svc.Load(context.Background(), f.patientID, mustDate(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := f.svc.Complete(context.Background(), view, ""); err != nil {
		t.Fatalf("first Complete: %v", err)
	}
	_, err = f.svc.Complete(context.Background(), view, "")
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if len(f.sender.Calls()) != 1 {
		t.Errorf("notification must not be re-sent, got %d sends", len(f.sender.Calls()))
	}
}

func TestComplete_ReloadedCompletedSale_AlreadyCompleted(t *testing.T) {
	f := newFixture(t)
	f.addSale(t, "2024-01-15", true)

	view, err := f.svc.Load(context.Background(), f.patientID, mustDate(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// The aggregator does not filter completed sales at fetch time, so the
	// persisted flag must stop a second completion after a fresh load.
	_, err = f.svc.Complete(context.Background(), view, "")
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if len(f.sender.Calls()) != 0 {
		t.Error("no notification may be sent for a completed sale")
	}
}

func TestComplete_MissingPhone(t *testing.T) {
	f := newFixture(t)
	f.patientRepo.patients[f.patientID].Phone = nil
	f.addSale(t, "2024-01-15", false)

	view, err := f.svc.Load(context.Background(), f.patientID, mustDate(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, err = f.svc.Complete(context.Background(), view, "")
	if !errors.Is(err, notification.ErrMissingContact) {
		t.Fatalf("expected ErrMissingContact, got %v", err)
	}
	if len(f.sender.Calls()) != 0 {
		t.Error("nothing may reach the messaging surface without a phone number")
	}
	stored, _ := f.saleRepo.GetByID(context.Background(), view.ActiveSale.ID)
	if stored.IsCompleted {
		t.Error("completion must not be persisted when the contact is missing")
	}
}

func TestComplete_PersistFailure_NotificationNotRolledBack(t *testing.T) {
	f := newFixture(t)
	f.addSale(t, "2024-01-15", false)
	f.saleRepo.failMark = true

	view, err := f.svc.Load(context.Background(), f.patientID, mustDate(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	updated, err := f.svc.Complete(context.Background(), view, "")
	if err == nil {
		t.Fatal("expected the persistence error to surface")
	}
	if len(f.sender.Calls()) != 1 {
		t.Errorf("notification goes out before the write and is not rolled back, got %d sends", len(f.sender.Calls()))
	}
	if len(updated.PendingSales) != 1 {
		t.Error("pending set is only pruned after a successful write")
	}

	// The write failed, so the sale never transitioned: a retry must be
	// allowed (and will re-notify, by the at-least-once semantics).
	f.saleRepo.failMark = false
	if _, err := f.svc.Complete(context.Background(), view, ""); err != nil {
		t.Fatalf("retry after persist failure: %v", err)
	}
}

func TestComplete_SendFailure_CompletionProceeds(t *testing.T) {
	f := newFixture(t)
	active := f.addSale(t, "2024-01-15", false)
	f.sender.ShouldFail = true
	f.sender.FailError = "surface unavailable"

	view, err := f.svc.Load(context.Background(), f.patientID, mustDate(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	updated, err := f.svc.Complete(context.Background(), view, "listo")
	if err != nil {
		t.Fatalf("dispatch is fire-and-forget; Complete: %v", err)
	}
	if len(updated.PendingSales) != 0 {
		t.Error("sale should have left the pending set")
	}
	stored, _ := f.saleRepo.GetByID(context.Background(), active.ID)
	if !stored.IsCompleted {
		t.Error("completion flag was not persisted")
	}
}
