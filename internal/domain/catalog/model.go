package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Branch maps to the branchs table (the store keeps the original table
// name). Registered once per storefront, then read-only.
type Branch struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Cell      *string   `db:"cell" json:"cell,omitempty"`
	RUC       *string   `db:"ruc" json:"ruc,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Validate checks required fields on Branch.
func (b *Branch) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Lens maps to the lens table: the lens-type catalog joined into sales for
// display.
type Lens struct {
	ID       uuid.UUID `db:"id" json:"id"`
	LensType string    `db:"lens_type" json:"lens_type"`
}
