package resilience

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
)

// TransientError wraps an error that is safe to retry: 408, 429, timeouts and
// dropped connections.
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

// NewTransientError wraps err as transient with an optional HTTP status.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// TerminalError wraps an error that retrying cannot fix: other 4xx/5xx
// statuses and undecodable bodies.
type TerminalError struct {
	Err        error
	StatusCode int
}

func (e *TerminalError) Error() string {
	return e.Err.Error()
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}

// NewTerminalError wraps err as terminal with an optional HTTP status.
func NewTerminalError(err error, statusCode int) *TerminalError {
	return &TerminalError{Err: err, StatusCode: statusCode}
}

// IsTransientHTTPStatus reports whether a status is worth retrying.
func IsTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout || statusCode == http.StatusTooManyRequests
}

// StatusError classifies a non-2xx response.
func StatusError(statusCode int, msg string) error {
	err := eris.Errorf("%s: status %d", msg, statusCode)
	if IsTransientHTTPStatus(statusCode) {
		return NewTransientError(err, statusCode)
	}
	return NewTerminalError(err, statusCode)
}

var transientPatterns = []string{
	"connection reset by peer",
	"broken pipe",
	"temporary failure in name resolution",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
}

// IsTransient reports whether err should be retried. A TerminalError anywhere
// in the chain wins over every other signal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var term *TerminalError
	if errors.As(err, &term) {
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
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// Kind labels an error "transient" or "terminal" for logging.
func Kind(err error) string {
	if IsTransient(err) {
		return "transient"
	}
	return "terminal"
}
