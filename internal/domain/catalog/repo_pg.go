package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogRepoPG struct{ pool *pgxpool.Pool }

func NewCatalogRepoPG(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepoPG{pool: pool}
}

func (r *catalogRepoPG) CreateBranch(ctx context.Context, b *Branch) error {
	b.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO branchs (id, name, address, email, cell, ruc)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		b.ID, b.Name, b.Address, b.Email, b.Cell, b.RUC)
	if err != nil {
		return fmt.Errorf("insert branch: %w", err)
	}
	return nil
}

func (r *catalogRepoPG) ListBranches(ctx context.Context) ([]*Branch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, address, email, cell, ruc, created_at
		FROM branchs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	var items []*Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Email, &b.Cell, &b.RUC, &b.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &b)
	}
	return items, rows.Err()
}

func (r *catalogRepoPG) ListLenses(ctx context.Context) ([]*Lens, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, lens_type FROM lens ORDER BY lens_type`)
	if err != nil {
		return nil, fmt.Errorf("list lenses: %w", err)
	}
	defer rows.Close()

	var items []*Lens
	for rows.Next() {
		var l Lens
		if err := rows.Scan(&l.ID, &l.LensType); err != nil {
			return nil, err
		}
		items = append(items, &l)
	}
	return items, rows.Err()
}
