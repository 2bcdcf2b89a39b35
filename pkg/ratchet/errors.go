package ratchet

import "errors"

// Package ratchet errors.
var (
	// ErrTooDistantInTheFuture is returned when a requested generation
	// exceeds the ratchet's configured maximum forward distance.
	ErrTooDistantInTheFuture = errors.New("ratchet: generation too far in the future")

	// ErrTooDistantInThePast is returned when a requested generation lies
	// further behind the ratchet head than its out-of-order tolerance.
	ErrTooDistantInThePast = errors.New("ratchet: generation too far in the past")

	// ErrIndexOutOfBounds is returned when a requested generation falls
	// within the tolerance window but no entry was ever cached for it.
	ErrIndexOutOfBounds = errors.New("ratchet: unknown message generation")

	// ErrSecretReuse is returned when a generation's key material was
	// already consumed by an earlier call.
	ErrSecretReuse = errors.New("ratchet: secret already consumed for this generation")
)
