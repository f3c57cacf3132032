package measurement

import (
	"time"

	"github.com/google/uuid"
)

// Measurement maps to the rx_final table: one refraction record per exam,
// with per-eye columns. All rx values are free-text in the entry forms
// ("+2.00", "20/20"), so they stay nullable strings rather than numbers.
type Measurement struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Right     EyeValues `json:"right"`
	Left      EyeValues `json:"left"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EyeValues holds the per-eye refraction fields shown on the lab-order
// screen. AVFar/AVNear are the far/near visual acuity (AV VL / AV VP), PD is
// the pupillary distance (DNP), Height the segment height (ALT).
type EyeValues struct {
	Sphere   *string `json:"sphere,omitempty"`
	Cylinder *string `json:"cylinder,omitempty"`
	Axis     *string `json:"axis,omitempty"`
	Prism    *string `json:"prism,omitempty"`
	Add      *string `json:"add,omitempty"`
	AVFar    *string `json:"av_far,omitempty"`
	AVNear   *string `json:"av_near,omitempty"`
	PD       *string `json:"pd,omitempty"`
	Height   *string `json:"height,omitempty"`
}
