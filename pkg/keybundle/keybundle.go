// Package keybundle defines the pre-key bundles members publish so that
// other members can perform an X3DH-style handshake with them without an
// interactive round trip: a long-term pre-key with a validity window, and
// disposable one-time pre-keys consumed on first use.
package keybundle

import (
	"crypto/ed25519"

	"github.com/backkem/groupcore/pkg/crypto"
)

// Lifetime is the validity window of a pre-key, expressed as Unix seconds.
type Lifetime struct {
	NotBefore int64
	NotAfter  int64
}

// LifetimeFromRange constructs a Lifetime spanning [notBefore, notAfter].
func LifetimeFromRange(notBefore, notAfter int64) Lifetime {
	return Lifetime{NotBefore: notBefore, NotAfter: notAfter}
}

// Contains reports whether now falls within the lifetime's validity window.
func (l Lifetime) Contains(now int64) bool {
	return now >= l.NotBefore && now <= l.NotAfter
}

// PreKey is an ephemeral X25519 public key together with the window during
// which it may be used to establish a handshake.
type PreKey struct {
	Public   [crypto.X25519KeySize]byte
	Lifetime Lifetime
}

// SigningPayload returns the canonical bytes signed over a pre-key: its
// public key and lifetime bounds. Both sides of a handshake must agree on
// this encoding, so it intentionally avoids any variable-width fields.
func (p PreKey) SigningPayload() []byte {
	buf := make([]byte, 0, crypto.X25519KeySize+16)
	buf = append(buf, p.Public[:]...)
	buf = appendInt64(buf, p.Lifetime.NotBefore)
	buf = appendInt64(buf, p.Lifetime.NotAfter)
	return buf
}

func appendInt64(buf []byte, v int64) []byte {
	u := uint64(v)
	for i := 7; i >= 0; i-- {
		buf = append(buf, byte(u>>(8*i)))
	}
	return buf
}

// LongTermKeyBundle is a member's long-lived pre-key, signed by their
// identity key, used when no one-time pre-key is available.
type LongTermKeyBundle struct {
	IdentityKey ed25519.PublicKey
	PreKey      PreKey
	Signature   []byte
}

// NewLongTermKeyBundle signs prekey with identitySecret and packages it
// into a bundle bound to identityPublic.
func NewLongTermKeyBundle(identityPublic ed25519.PublicKey, identitySecret ed25519.PrivateKey, prekey PreKey) LongTermKeyBundle {
	sig := crypto.Sign(identitySecret, prekey.SigningPayload())
	return LongTermKeyBundle{
		IdentityKey: identityPublic,
		PreKey:      prekey,
		Signature:   sig,
	}
}

// Verify checks the bundle's signature and that now falls within the
// pre-key's lifetime. Expired bundles are rejected even if well-signed.
func (b LongTermKeyBundle) Verify(now int64) error {
	if err := crypto.Verify(b.IdentityKey, b.PreKey.SigningPayload(), b.Signature); err != nil {
		return err
	}
	if !b.PreKey.Lifetime.Contains(now) {
		return ErrExpired
	}
	return nil
}

// OneTimeKeyBundle is a disposable pre-key meant to be consumed once and
// discarded, giving the handshake stronger forward secrecy than the
// long-term bundle alone.
type OneTimeKeyBundle struct {
	IdentityKey ed25519.PublicKey
	PreKey      PreKey
	Signature   []byte
}

// NewOneTimeKeyBundle signs prekey with identitySecret and packages it
// into a one-time bundle bound to identityPublic.
func NewOneTimeKeyBundle(identityPublic ed25519.PublicKey, identitySecret ed25519.PrivateKey, prekey PreKey) OneTimeKeyBundle {
	sig := crypto.Sign(identitySecret, prekey.SigningPayload())
	return OneTimeKeyBundle{
		IdentityKey: identityPublic,
		PreKey:      prekey,
		Signature:   sig,
	}
}

// Verify checks the bundle's signature and that now falls within the
// pre-key's lifetime.
func (b OneTimeKeyBundle) Verify(now int64) error {
	if err := crypto.Verify(b.IdentityKey, b.PreKey.SigningPayload(), b.Signature); err != nil {
		return err
	}
	if !b.PreKey.Lifetime.Contains(now) {
		return ErrExpired
	}
	return nil
}

// LatestLongTerm selects the long-term bundle with the furthest-future
// expiry from bundles, matching the original key registry's
// "latest_key_bundle" tie-break: bundles with an earlier NotAfter are
// superseded even if both are currently valid. Returns false if bundles
// is empty.
func LatestLongTerm(bundles []LongTermKeyBundle) (LongTermKeyBundle, bool) {
	var latest LongTermKeyBundle
	found := false
	for _, b := range bundles {
		if !found || b.PreKey.Lifetime.NotAfter > latest.PreKey.Lifetime.NotAfter {
			latest = b
			found = true
		}
	}
	return latest, found
}
