package wire

import "errors"

// Package wire errors.
var (
	// ErrUnknownControlKind is returned when decoding a ControlMessage
	// whose kind discriminant doesn't match any known variant.
	ErrUnknownControlKind = errors.New("wire: unknown control message kind")

	// ErrEmptyControlMessage is returned when encoding a ControlMessage
	// with neither an action nor a revocation set.
	ErrEmptyControlMessage = errors.New("wire: control message has no action and no revoke")

	// ErrMalformedSecretBundle is returned when a decoded group secret,
	// alone or inside a secret bundle, has a key that is not
	// crypto.SecretSize bytes long.
	ErrMalformedSecretBundle = errors.New("wire: malformed secret bundle sequence")

	// ErrMalformedKeyBundle is returned when a decoded pre-key bundle's
	// fixed-size fields have the wrong length.
	ErrMalformedKeyBundle = errors.New("wire: malformed key bundle")

	// ErrMalformedDirectMessage is returned when a direct message's
	// handshake header has the wrong length for its flag.
	ErrMalformedDirectMessage = errors.New("wire: malformed direct message header")
)
