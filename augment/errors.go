package augment

import (
	"errors"
	"fmt"
)

// Kind classifies why an augment run failed.
type Kind string

const (
	KindInputNotFound Kind = "input-not-found"
	KindMissingColumn Kind = "missing-required-column"
	KindProcessing    Kind = "processing-error"
)

// Error is returned by Augment and Run. Column is set for KindMissingColumn,
// Path for file related failures.
type Error struct {
	Kind   Kind
	Column string
	Path   string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInputNotFound:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	case KindMissingColumn:
		return fmt.Sprintf("%s: column %q not found in header", e.Kind, e.Column)
	default:
		if e.Path != "" {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

func missingColumn(name string) *Error {
	return &Error{Kind: KindMissingColumn, Column: name}
}

func processing(path string, err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindProcessing, Path: path, Err: err}
}
