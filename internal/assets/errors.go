package assets

import (
	"errors"
	"fmt"
)

// ValidationError rejects an upload before any storage side effect.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validationf builds a ValidationError.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ProbeError is returned when media inspection fails. Reason is a fixed
// category that is safe to show to clients. Detail carries tool output and
// is only logged.
type ProbeError struct {
	Path   string
	Reason string
	Detail string
	Err    error
}

func (e *ProbeError) Error() string {
	msg := fmt.Sprintf("probe %s: %s", e.Path, e.Reason)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// TranscodeError is a per-tier encoder failure. As with ProbeError, Reason
// is client-safe and Detail is for the log.
type TranscodeError struct {
	Tier   string
	Reason string
	Detail string
	Err    error
}

func (e *TranscodeError) Error() string {
	msg := fmt.Sprintf("transcode %s: %s", e.Tier, e.Reason)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// TranscodeReason returns the client-safe reason of a failed tier.
func TranscodeReason(err error) string {
	var te *TranscodeError
	if errors.As(err, &te) && te.Reason != "" {
		return te.Reason
	}
	return "encoder failed"
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}

// NotFoundError references an unknown asset or rendition.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsProbe reports whether err wraps a ProbeError.
func IsProbe(err error) bool {
	var p *ProbeError
	return errors.As(err, &p)
}
