package keybundle

import "errors"

// Package keybundle errors.
var (
	// ErrExpired is returned when a pre-key bundle's lifetime does not
	// cover the current time.
	ErrExpired = errors.New("keybundle: pre-key bundle expired")
)
