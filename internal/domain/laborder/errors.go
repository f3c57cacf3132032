package laborder

import "errors"

var (
	// ErrMissingPatientID means the screen was opened without a patient
	// identifier. Detected locally, before any backend call.
	ErrMissingPatientID = errors.New("patient id is not available")

	// ErrMissingData means completion was requested without an active order
	// or patient loaded. Nothing is mutated and nothing is sent.
	ErrMissingData = errors.New("order or patient data is missing")

	// ErrAlreadyCompleted guards the Open -> Completed transition: a sale
	// completes exactly once and the pickup notification is never re-sent.
	ErrAlreadyCompleted = errors.New("order is already completed")
)
