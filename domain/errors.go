package domain

import "fmt"

// ErrorKind is the closed taxonomy of business error kinds the workflow
// service can raise. The HTTP/JSON surface (an external collaborator, out
// of scope for this module) is the only place that should translate a Kind
// into a status code; the mapping is recorded here only as documentation
// of the contract.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"         // 400
	KindInvalidState      ErrorKind = "invalid_state"       // 409
	KindNotFound          ErrorKind = "not_found"           // 404
	KindForbidden         ErrorKind = "forbidden"           // 403
	KindPreconditionFailed ErrorKind = "precondition_failed" // 412
	KindConflict          ErrorKind = "conflict"            // 409
	KindInternal          ErrorKind = "internal"            // 500
)

// AppError is the tagged error every workflow.Service method returns
// instead of a bare error. It carries a Kind, a short stable message safe
// to show a caller, free-form Details for diagnostics, and an optional
// wrapped Cause for logs.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with no cause.
func New(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(kind ErrorKind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an AppError carrying cause as its Cause.
func Wrap(cause error, kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

// Wrapf creates an AppError with a formatted message, carrying cause.
func Wrapf(cause error, kind ErrorKind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithDetails sets Details in place and returns the receiver, so call
// sites can chain it onto New/Wrap.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithDetailsf(format string, args ...any) *AppError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

// AsKind reports the Kind of err when err is an *AppError. A Kind is not
// an error value, so errors.Is cannot match on it; callers use AsKind or
// IsKind instead.
func AsKind(err error) (ErrorKind, bool) {
	ae, ok := err.(*AppError)
	if !ok {
		return "", false
	}
	return ae.Kind, true
}

// IsKind reports whether err is an *AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := AsKind(err)
	return ok && k == kind
}
