package crypto

import "errors"

// Package crypto errors.
var (
	// ErrInvalidKeySize is returned when a key does not have the expected length.
	ErrInvalidKeySize = errors.New("crypto: invalid key size")

	// ErrInvalidNonceSize is returned when a nonce does not have the expected length.
	ErrInvalidNonceSize = errors.New("crypto: invalid nonce size")

	// ErrAuthFailed is returned when AEAD authentication fails during Open.
	ErrAuthFailed = errors.New("crypto: message authentication failed")

	// ErrInvalidSignature is returned when an Ed25519 signature fails to verify.
	ErrInvalidSignature = errors.New("crypto: invalid signature")
)
