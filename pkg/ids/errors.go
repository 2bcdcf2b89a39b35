package ids

import "errors"

// Package ids errors.
var (
	// ErrInvalidLength is returned when a byte slice has the wrong length
	// to be decoded into an identifier type.
	ErrInvalidLength = errors.New("ids: invalid identifier length")
)
