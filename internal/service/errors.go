package service

import "fmt"

// RequestError is a user-correctable failure: bad input, an ownership
// violation or an inadmissible state transition. The handler layer maps it
// to a client error status, unlike infrastructure failures.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func failf(format string, args ...any) error {
	return &RequestError{Message: fmt.Sprintf(format, args...)}
}
