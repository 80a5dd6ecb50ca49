package retry

import (
	"errors"
	"fmt"
)

// StatusError is an upstream failure carrying an HTTP status code.
type StatusError struct {
	// Status is the HTTP status returned by the service, 0 when unknown.
	Status int
	// Message describes the failure.
	Message string
	// Code is the service specific error code, if the body carried one.
	Code string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d: %s (code %s)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status.
func (e *StatusError) StatusCode() int {
	return e.Status
}

// Transient reports whether the failure is worth retrying.
func (e *StatusError) Transient() bool {
	return e.Status >= 500
}

// ExhaustedError is returned when every attempt failed with a transient error.
type ExhaustedError struct {
	// Attempts is the total number of calls made.
	Attempts int
	// Err is the error of the last attempt.
	Err error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// statusCoder is implemented by errors that expose an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// StatusOf returns the status carried by err, or 0 when it has none.
func StatusOf(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

// IsTransient reports whether err carries a status of 500 or above.
func IsTransient(err error) bool {
	return StatusOf(err) >= 500
}
