package laborder

import (
	"github.com/optica/optica/internal/domain/measurement"
	"github.com/optica/optica/internal/domain/patient"
	"github.com/optica/optica/internal/domain/sale"
)

// View is the request-scoped state of one fulfillment screen: everything the
// lab-order page shows, loaded together and passed explicitly through the
// completion workflow instead of living in shared screen state.
type View struct {
	Patient *patient.Patient `json:"patient"`

	// Measurement is the patient's current refraction pair; nil renders as a
	// blank rx table, not as an error.
	Measurement *measurement.Measurement `json:"measurement,omitempty"`

	// ActiveSale is the one order under review, selected by date match; nil
	// means no order details are shown.
	ActiveSale *sale.Sale `json:"active_sale,omitempty"`

	// PendingSales is the patient's full fetched order list. It is not
	// filtered by completion status at load time; completion prunes it.
	PendingSales []*sale.Sale `json:"pending_sales"`
}

// withoutSale returns a copy of the pending list with the given sale removed.
func withoutSale(pending []*sale.Sale, removed *sale.Sale) []*sale.Sale {
	out := make([]*sale.Sale, 0, len(pending))
	for _, s := range pending {
		if s.ID != removed.ID {
			out = append(out, s)
		}
	}
	return out
}
