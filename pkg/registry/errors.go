package registry

import "errors"

// Package registry errors.
var (
	// ErrNoKeyBundle is returned when no pre-key bundle was ever stored
	// for the requested identity.
	ErrNoKeyBundle = errors.New("registry: no key bundle for identity")

	// ErrKeyBundlesExpired is returned when pre-key bundles exist for the
	// requested identity but every one of them has expired.
	ErrKeyBundlesExpired = errors.New("registry: all available key bundles expired")

	// ErrIdentityMismatch is returned when a bundle claims an identity
	// key different from the one already on record for that member.
	ErrIdentityMismatch = errors.New("registry: identity key mismatch")
)
