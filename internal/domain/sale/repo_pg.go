package sale

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type saleRepoPG struct{ pool *pgxpool.Pool }

func NewSaleRepoPG(pool *pgxpool.Pool) SaleRepository {
	return &saleRepoPG{pool: pool}
}

const saleCols = `s.id, s.patient_id, s.branch_id, s.lens_id, s.date, s.frame,
	s.delivery_time, s.p_frame, s.p_lens, s.price, s.discount_frame,
	s.discount_lens, s.total, s.balance, s.credit, s.payment_in,
	s.is_completed, s.created_at, l.lens_type, b.name`

const saleJoins = `FROM sales s
	LEFT JOIN lens l ON l.id = s.lens_id
	LEFT JOIN branchs b ON b.id = s.branch_id`

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.PatientID, &s.BranchID, &s.LensID, &s.Date,
		&s.Frame, &s.DeliveryTime, &s.FramePrice, &s.LensPrice, &s.Price,
		&s.DiscountFrame, &s.DiscountLens, &s.Total, &s.Balance, &s.Credit,
		&s.PaymentIn, &s.IsCompleted, &s.CreatedAt, &s.LensType, &s.BranchName)
	return &s, err
}

func (r *saleRepoPG) Create(ctx context.Context, s *Sale) error {
	s.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sales (id, patient_id, branch_id, lens_id, date, frame,
			delivery_time, p_frame, p_lens, price, discount_frame,
			discount_lens, total, balance, credit, payment_in)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		s.ID, s.PatientID, s.BranchID, s.LensID, s.Date, s.Frame,
		s.DeliveryTime, s.FramePrice, s.LensPrice, s.Price, s.DiscountFrame,
		s.DiscountLens, s.Total, s.Balance, s.Credit, s.PaymentIn)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *saleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	s, err := scanSale(r.pool.QueryRow(ctx,
		`SELECT `+saleCols+` `+saleJoins+` WHERE s.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query sale: %w", err)
	}
	return s, nil
}

// ListByPatient deliberately carries no ORDER BY: the fulfillment screen's
// active-order selection depends on the store's natural return order, which
// the tie-break policies in the service isolate.
func (r *saleRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Sale, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+saleCols+` `+saleJoins+` WHERE s.patient_id = $1`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var items []*Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *saleRepoPG) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sales SET is_completed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark sale completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *saleRepoPG) ListPending(ctx context.Context, limit, offset int) ([]*Sale, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sales WHERE is_completed = FALSE`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pending sales: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+saleCols+` `+saleJoins+`
		WHERE s.is_completed = FALSE
		ORDER BY s.date LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending sales: %w", err)
	}
	defer rows.Close()

	var items []*Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}
