// Package document contains pure functions for composing the published HTML
// document from uploaded assets. This is part of the Functional Core - all
// functions are pure with no I/O.
package document

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrEmptyDocument is returned when the HTML shell is empty.
	ErrEmptyDocument = errors.New("html document is empty")

	// ErrMalformedDocument is returned when an optional asset was supplied but
	// the HTML shell lacks the marker it must be woven into.
	ErrMalformedDocument = errors.New("malformed html document")
)

// WeaveError wraps ErrMalformedDocument with the asset and marker involved.
type WeaveError struct {
	Asset  string // e.g. "css"
	Marker string // e.g. "</head>"
	Err    error
}

func (e *WeaveError) Error() string {
	return fmt.Sprintf("cannot weave %s: document has no %s marker", e.Asset, e.Marker)
}

func (e *WeaveError) Unwrap() error {
	return e.Err
}

// NewWeaveError creates a new WeaveError.
func NewWeaveError(asset, marker string) *WeaveError {
	return &WeaveError{
		Asset:  asset,
		Marker: marker,
		Err:    ErrMalformedDocument,
	}
}
