// Package errs holds the failure taxonomy shared by the fetch, sentiment and
// topic steps. Callers classify with errors.Is against the sentinels below.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInputInvalid is returned before any network call for an unusable
	// identifier, URL or argument.
	ErrInputInvalid = errors.New("invalid input")
	// ErrUpstreamUnavailable covers transport failures and non-success statuses.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamMalformed covers responses whose shape does not match the contract.
	ErrUpstreamMalformed = errors.New("upstream response malformed")
	// ErrInsufficientData means the corpus is too small to model; it is a skip, not a failure.
	ErrInsufficientData = errors.New("insufficient data")
)

const maxBodyLength = 512

// UpstreamError carries what the dashboard needs to explain a failed external call.
type UpstreamError struct {
	Kind       error
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Service, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unavailable builds an ErrUpstreamUnavailable error. statusCode is 0 for
// transport failures.
func Unavailable(service string, statusCode int, body []byte, err error) error {
	return &UpstreamError{
		Kind:       ErrUpstreamUnavailable,
		Service:    service,
		StatusCode: statusCode,
		Body:       clip(body),
		Err:        err,
	}
}

// Malformed builds an ErrUpstreamMalformed error.
func Malformed(service string, body []byte, err error) error {
	return &UpstreamError{
		Kind:    ErrUpstreamMalformed,
		Service: service,
		Body:    clip(body),
		Err:     err,
	}
}

// Invalid wraps a validation message as ErrInputInvalid.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInputInvalid, fmt.Sprintf(format, args...))
}

// Upstream returns the UpstreamError inside err, if any.
func Upstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

func clip(body []byte) string {
	if len(body) <= maxBodyLength {
		return string(body)
	}
	// back off to a rune boundary
	cut := maxBodyLength
	for cut > 0 && body[cut]&0xC0 == 0x80 {
		cut--
	}
	return string(body[:cut]) + "..."
}
