package toon

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks a caller-supplied value that fails a precondition.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMalformedPayload marks a payload that signals a domain but lacks its nested fields.
	ErrMalformedPayload = errors.New("malformed payload")
)

// CommunicationError is a transport-level failure reaching the device.
type CommunicationError struct {
	Op  string
	Err error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("communication error during %s: %v", e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() error { return e.Err }

// DeviceRejectedError is returned when the device answers with a structured error body.
type DeviceRejectedError struct {
	StatusCode int
	Message    string
	// Offline is set when the body says the device lost contact with the thermostat.
	Offline bool
}

func (e *DeviceRejectedError) Error() string {
	return fmt.Sprintf("device rejected request (status %d): %s", e.StatusCode, e.Message)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func malformed(domain, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedPayload, domain, fmt.Sprintf(format, args...))
}
