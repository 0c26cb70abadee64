package models

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned to the caller of a fetch whose result arrived
// after a newer fetch had been issued. The result is dropped.
var ErrSuperseded = errors.New("superseded by a newer request")

type ErrorKind string

const (
	ErrorKindTransport     ErrorKind = "transport_error"
	ErrorKindNormalization ErrorKind = "normalization_error"
)

// TransportError is a network or HTTP failure talking to a backend.
type TransportError struct {
	Transport  Transport
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s transport: status %d: %s", e.Transport, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s transport: %s", e.Transport, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NormalizationError means a backend answered with a shape matching neither
// known schema.
type NormalizationError struct {
	Transport Transport
	Reason    string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s response: %s", e.Transport, e.Reason)
}

// QueryError is what the query facade publishes on failure.
type QueryError struct {
	Transport  Transport `json:"transport"`
	Kind       ErrorKind `json:"kind"`
	StatusCode int       `json:"status_code,omitempty"`
	Message    string    `json:"message"`
	Err        error     `json:"-"`
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Transport, e.Message)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError classifies err. Normalization failures are reported with a
// generic message; the detail stays in Err for logging.
func NewQueryError(transport Transport, err error) *QueryError {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe
	}

	var ne *NormalizationError
	if errors.As(err, &ne) {
		return &QueryError{
			Transport: transport,
			Kind:      ErrorKindNormalization,
			Message:   "unexpected response from catalog service",
			Err:       err,
		}
	}

	out := &QueryError{
		Transport: transport,
		Kind:      ErrorKindTransport,
		Message:   err.Error(),
		Err:       err,
	}
	var te *TransportError
	if errors.As(err, &te) {
		out.StatusCode = te.StatusCode
		out.Message = te.Message
	}
	return out
}
