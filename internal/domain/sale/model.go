package sale

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no sale record matches the requested id.
var ErrNotFound = errors.New("sale not found")

const dateLayout = "2006-01-02"

// Date is the civil order date ("2024-01-15"). The fulfillment screen selects
// the active order by exact date match, so the time-of-day component never
// participates.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner so pgx can read DATE columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) { return d.Time, nil }

// SameDay reports whether two dates denote the same civil day.
func (d Date) SameDay(other Date) bool {
	return d.Format(dateLayout) == other.Format(dateLayout)
}

// Sale maps to the sales table: one lab order for frame/lens goods, tracked
// through to pickup. Column names follow the store schema (balance is the
// amount paid so far, credit the remaining balance, as on the entry form).
type Sale struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	BranchID      uuid.UUID  `db:"branch_id" json:"branch_id"`
	LensID        *uuid.UUID `db:"lens_id" json:"lens_id,omitempty"`
	Date          Date       `db:"date" json:"date"`
	Frame         *string    `db:"frame" json:"frame,omitempty"`
	DeliveryTime  *string    `db:"delivery_time" json:"delivery_time,omitempty"`
	FramePrice    float64    `db:"p_frame" json:"p_frame"`
	LensPrice     float64    `db:"p_lens" json:"p_lens"`
	Price         float64    `db:"price" json:"price"`
	DiscountFrame float64    `db:"discount_frame" json:"discount_frame"`
	DiscountLens  float64    `db:"discount_lens" json:"discount_lens"`
	Total         float64    `db:"total" json:"total"`
	Balance       float64    `db:"balance" json:"balance"`
	Credit        float64    `db:"credit" json:"credit"`
	PaymentIn     *string    `db:"payment_in" json:"payment_in,omitempty"`
	IsCompleted   bool       `db:"is_completed" json:"is_completed"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`

	// Joined for display; nil when the sale has no lens reference or the
	// catalog row is gone.
	LensType   *string `db:"lens_type" json:"lens_type,omitempty"`
	BranchName *string `db:"branch_name" json:"branch_name,omitempty"`
}

// Validate checks the fields the entry form marks as required.
func (s *Sale) Validate() error {
	if s.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if s.BranchID == uuid.Nil {
		return fmt.Errorf("branch_id is required")
	}
	if s.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}
