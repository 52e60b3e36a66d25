package allocation

import "errors"

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	ErrMissingFields ErrorKind = "missing_fields"
	ErrOutOfRange    ErrorKind = "out_of_range"
	ErrOvercommitted ErrorKind = "overcommitted"
)

// ValidationError is a recoverable, user-correctable failure. The message is
// meant to be shown to the user verbatim.
type ValidationError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrPaidImmutable rejects amount, percentage and date edits on installments
// that have already been paid. Deleting a paid installment is allowed only
// through the admin override path.
var ErrPaidImmutable = errors.New("paid payments cannot be modified")
