package gitlab

import (
	"errors"
	"net"
	"strings"
)

// Error codes for glpat.
const (
	ErrAuthRequired    = "AUTH_REQUIRED"
	ErrLoginFailed     = "LOGIN_FAILED"
	ErrCSRFNotFound    = "CSRF_NOT_FOUND"
	ErrTokenNotFound   = "TOKEN_NOT_FOUND"
	ErrTokenFileEmpty  = "TOKEN_FILE_EMPTY"
	ErrPasswordMissing = "PASSWORD_MISSING"
	ErrAPIError        = "API_ERROR"
	ErrAPITimeout      = "API_TIMEOUT"
	ErrNetworkError    = "NETWORK_ERROR"
	ErrInvalidUsage    = "INVALID_USAGE"
)

// Error carries a glpat error code, message, and suggestion.
type Error struct {
	Code       string
	Message    string
	Suggestion string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates an Error with the given code, message, and suggestion.
func NewError(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// MapNetworkError determines if an error is a network error and returns the appropriate code.
func MapNetworkError(err error) (code string, isNetwork bool) {
	if err == nil {
		return "", false
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return ErrNetworkError, true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrNetworkError, true
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "i/o timeout") {
		return ErrNetworkError, true
	}

	if strings.Contains(msg, "context deadline exceeded") {
		return ErrAPITimeout, true
	}

	return "", false
}

// wrapNetworkError converts transport-level failures into coded errors,
// leaving everything else untouched for %w wrapping at the call site.
func wrapNetworkError(err error, operation string) error {
	if code, ok := MapNetworkError(err); ok {
		suggestion := "Check that GitLab is running and GITLAB_URL points at it"
		if code == ErrAPITimeout {
			suggestion = "GitLab did not respond in time; it may still be booting"
		}
		return NewError(code, operation+": "+err.Error(), suggestion)
	}
	return err
}
