package measurement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type measurementRepoPG struct{ pool *pgxpool.Pool }

func NewMeasurementRepoPG(pool *pgxpool.Pool) MeasurementRepository {
	return &measurementRepoPG{pool: pool}
}

const rxCols = `id, patient_id,
	sphere_right, cylinder_right, axis_right, prism_right, add_right,
	av_far_right, av_near_right, pd_right, height_right,
	sphere_left, cylinder_left, axis_left, prism_left, add_left,
	av_far_left, av_near_left, pd_left, height_left,
	created_at`

func scanMeasurement(row pgx.Row) (*Measurement, error) {
	var m Measurement
	err := row.Scan(&m.ID, &m.PatientID,
		&m.Right.Sphere, &m.Right.Cylinder, &m.Right.Axis, &m.Right.Prism, &m.Right.Add,
		&m.Right.AVFar, &m.Right.AVNear, &m.Right.PD, &m.Right.Height,
		&m.Left.Sphere, &m.Left.Cylinder, &m.Left.Axis, &m.Left.Prism, &m.Left.Add,
		&m.Left.AVFar, &m.Left.AVNear, &m.Left.PD, &m.Left.Height,
		&m.CreatedAt)
	return &m, err
}

func (r *measurementRepoPG) Create(ctx context.Context, m *Measurement) error {
	m.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rx_final (id, patient_id,
			sphere_right, cylinder_right, axis_right, prism_right, add_right,
			av_far_right, av_near_right, pd_right, height_right,
			sphere_left, cylinder_left, axis_left, prism_left, add_left,
			av_far_left, av_near_left, pd_left, height_left)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		m.ID, m.PatientID,
		m.Right.Sphere, m.Right.Cylinder, m.Right.Axis, m.Right.Prism, m.Right.Add,
		m.Right.AVFar, m.Right.AVNear, m.Right.PD, m.Right.Height,
		m.Left.Sphere, m.Left.Cylinder, m.Left.Axis, m.Left.Prism, m.Left.Add,
		m.Left.AVFar, m.Left.AVNear, m.Left.PD, m.Left.Height)
	if err != nil {
		return fmt.Errorf("insert measurement: %w", err)
	}
	return nil
}

// ListByPatient returns the patient's measurements in the store's natural
// return order. There is no recency column; callers pick the "current" row
// through the currentMeasurement policy.
func (r *measurementRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Measurement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+rxCols+` FROM rx_final WHERE patient_id = $1`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()

	var items []*Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
