package resilience

import (
	"errors"
	"net"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrMissingCredentials marks a provider call made without configured
// credentials. It is a configuration fault and aborts the run.
var ErrMissingCredentials = errors.New("missing provider credentials")

// IsConfigFault reports whether err is a configuration fault.
func IsConfigFault(err error) bool {
	return err != nil && eris.Is(err, ErrMissingCredentials)
}

// TransientError wraps an error that is safe to retry (429, 5xx, timeouts).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient reports whether err is a TransientError or a network timeout.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "i/o timeout")
}

// IsTransientHTTPStatus returns true if the HTTP status code indicates a
// rate limit or a server-side failure.
func IsTransientHTTPStatus(statusCode int) bool {
	return statusCode == 408 || statusCode == 429 || statusCode >= 500
}
