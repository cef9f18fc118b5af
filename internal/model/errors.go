package model

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of user-facing failures. Every error crossing
// a service boundary is an *Error carrying one of these kinds; anything else
// is an infrastructure fault.
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindNotFound          ErrorKind = "not_found"
	KindAmbiguous         ErrorKind = "ambiguous"
	KindInsufficientStock ErrorKind = "insufficient_stock"
	KindAlreadyCancelled  ErrorKind = "already_cancelled"
	KindOutOfWindow       ErrorKind = "out_of_window"
)

type Error struct {
	Kind    ErrorKind
	Message string

	// Candidates is populated only for KindAmbiguous.
	Candidates []Product
	// Available is populated only for KindInsufficientStock.
	Available int
}

func (e *Error) Error() string {
	return e.Message
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AmbiguousError reports a name lookup with partial matches and no exact
// match. The caller must re-prompt with a specific candidate.
func AmbiguousError(name string, candidates []Product) *Error {
	return &Error{
		Kind:       KindAmbiguous,
		Message:    fmt.Sprintf("no exact match for %q", name),
		Candidates: candidates,
	}
}

func InsufficientStockError(productName string, available int) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock for %s, available: %d", productName, available),
		Available: available,
	}
}

// KindOf extracts the error kind, or "" for non-domain errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
