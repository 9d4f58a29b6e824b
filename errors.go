package hkaccessory

import (
	"context"
	"errors"
	"fmt"
)

// Configuration and validation errors. They never reach a controller,
// request paths translate them into a HAPStatus.
var (
	ErrInvalidProps          = errors.New("invalid characteristic props")
	ErrMinGreaterThanMax     = errors.New("minValue cannot be greater than maxValue")
	ErrInvalidValue          = errors.New("invalid characteristic value")
	ErrInvalidUUID           = errors.New("invalid characteristic uuid")
	ErrNoValidValuesStrategy = errors.New("no valid values strategy for props")
	ErrUnknownCharacteristic = errors.New("unknown characteristic")
)

// StatusError carries a HAP status together with the failure that caused it.
type StatusError struct {
	Status HAPStatus
	err    error
}

// NewStatusError wraps err with the given status. err may be nil.
func NewStatusError(status HAPStatus, err error) *StatusError {
	return &StatusError{Status: status, err: err}
}

func (e *StatusError) Error() string {
	if e.err == nil {
		return e.Status.Error()
	}
	return fmt.Sprintf("%v: %v", e.Status.Error(), e.err)
}

func (e *StatusError) Unwrap() error {
	return e.err
}

// StatusFromError maps any handler failure to a HAP status. A HAPStatus or
// *StatusError anywhere in the chain is returned verbatim, an expired
// deadline maps to StatusOperationTimedOut, everything else to
// StatusServiceCommunicationFailure. The second result reports whether the
// status was carried by err itself.
func StatusFromError(err error) (HAPStatus, bool) {
	if err == nil {
		return StatusSuccess, true
	}

	var se *StatusError
	if errors.As(err, &se) && se.Status.Valid() && se.Status != StatusSuccess {
		return se.Status, true
	}
	var st HAPStatus
	if errors.As(err, &st) && st.Valid() && st != StatusSuccess {
		return st, true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusOperationTimedOut, false
	}
	return StatusServiceCommunicationFailure, false
}

// ValidationError reports why a value was refused by the client value validator.
type ValidationError struct {
	Characteristic string
	Value          any
	Reason         string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("characteristic %q: invalid value %v: %s", e.Characteristic, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidValue
}
