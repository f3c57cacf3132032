package patient

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no patient record matches the requested id.
var ErrNotFound = errors.New("patient not found")

// Patient maps to the patients table. Read-only for the fulfillment
// workflow; created by the registration screens.
type Patient struct {
	ID         uuid.UUID `db:"id" json:"id"`
	FirstName  string    `db:"firstname" json:"firstname"`
	LastName   string    `db:"lastname" json:"lastname"`
	NationalID string    `db:"national_id" json:"national_id"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the display name used on the order screens.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PhoneNumber returns the contact phone or "" when none is recorded.
func (p *Patient) PhoneNumber() string {
	if p.Phone == nil {
		return ""
	}
	return *p.Phone
}

// Validate checks required fields on Patient.
func (p *Patient) Validate() error {
	if p.FirstName == "" {
		return fmt.Errorf("firstname is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("lastname is required")
	}
	if p.NationalID == "" {
		return fmt.Errorf("national_id is required")
	}
	return nil
}
