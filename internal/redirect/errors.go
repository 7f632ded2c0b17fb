package redirect

import (
	"context"
	"errors"
	"fmt"

	"redirect-lookup-go/internal/model"
)

// Error kinds. Every error returned by this package and by the resolver
// matches exactly one of them with errors.Is.
var (
	ErrExtraction      = errors.New("redirect key extraction failed")
	ErrNotFound        = errors.New("redirect not found")
	ErrStore           = errors.New("redirect store failure")
	ErrMalformedRecord = errors.New("malformed redirect record")
)

// Extraction and record details carried in Error.Err.
var (
	ErrMissingHost   = errors.New("missing host")
	ErrNoPathSegment = errors.New("no alphanumeric path segment")
	ErrMissingTarget = errors.New("record has no target")
)

// Error is a classified resolution failure.
type Error struct {
	Kind error
	Key  model.RedirectKey // zero when extraction failed
	Err  error             // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := e.Kind.Error()
	if e.Key.Domain != "" || e.Key.Path != "" {
		msg += fmt.Sprintf(" (domain=%q path=%q)", e.Key.Domain, e.Key.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Outcome labels used in logs, metrics and spans.
const (
	OutcomeRedirect   = "redirect"
	OutcomeExtraction = "extraction_error"
	OutcomeNotFound   = "not_found"
	OutcomeMalformed  = "malformed_record"
	OutcomeStoreError = "store_error"
	OutcomeCanceled   = "canceled"
	OutcomeTimeout    = "timeout"
)

// Outcome classifies err into a bounded label. A nil error is a redirect.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeRedirect
	case errors.Is(err, ErrExtraction):
		return OutcomeExtraction
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrMalformedRecord):
		return OutcomeMalformed
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeStoreError
	}
}
