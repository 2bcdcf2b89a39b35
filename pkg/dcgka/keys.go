package dcgka

import (
	"github.com/backkem/groupcore/pkg/crypto"
	"github.com/backkem/groupcore/pkg/ids"
	"github.com/backkem/groupcore/pkg/keybundle"
)

// LocalKeys holds the secret material a peer needs to publish its own
// key bundles and decrypt direct messages addressed to it: its
// long-term identity key pair, a long-term X25519 pre-key pair, and any
// one-time pre-key pairs it has generated but not yet exhausted.
type LocalKeys struct {
	Identity crypto.Ed25519KeyPair
	LongTerm crypto.X25519KeyPair
	oneTime  map[[crypto.X25519KeySize]byte]crypto.X25519KeyPair
}

// NewLocalKeys generates a fresh identity key pair and long-term
// pre-key pair.
func NewLocalKeys() (*LocalKeys, error) {
	identity, err := crypto.GenerateEd25519KeyPair()
	if err != nil {
		return nil, err
	}
	longTerm, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		return nil, err
	}
	return &LocalKeys{
		Identity: identity,
		LongTerm: longTerm,
		oneTime:  make(map[[crypto.X25519KeySize]byte]crypto.X25519KeyPair),
	}, nil
}

// IdentityID returns the local identity as an ids.Identity.
func (k *LocalKeys) IdentityID() (ids.Identity, error) {
	return ids.IdentityFromBytes(k.Identity.Public)
}

// LongTermKeyBundle signs and returns a publishable long-term key
// bundle valid for lifetime.
func (k *LocalKeys) LongTermKeyBundle(lifetime keybundle.Lifetime) keybundle.LongTermKeyBundle {
	preKey := keybundle.PreKey{Public: k.LongTerm.Public, Lifetime: lifetime}
	return keybundle.NewLongTermKeyBundle(k.Identity.Public, k.Identity.Private, preKey)
}

// GenerateOneTimeKeyBundle generates a new one-time pre-key pair, retains
// its private half, and returns a publishable signed bundle.
func (k *LocalKeys) GenerateOneTimeKeyBundle(lifetime keybundle.Lifetime) (keybundle.OneTimeKeyBundle, error) {
	pair, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		return keybundle.OneTimeKeyBundle{}, err
	}
	k.oneTime[pair.Public] = pair

	preKey := keybundle.PreKey{Public: pair.Public, Lifetime: lifetime}
	return keybundle.NewOneTimeKeyBundle(k.Identity.Public, k.Identity.Private, preKey), nil
}

// oneTimePrivate returns the stored private key for a published one-time
// public key, if the local key manager still holds it.
func (k *LocalKeys) oneTimePrivate(public [crypto.X25519KeySize]byte) ([crypto.X25519KeySize]byte, bool) {
	pair, ok := k.oneTime[public]
	if !ok {
		return [crypto.X25519KeySize]byte{}, false
	}
	delete(k.oneTime, public) // one-time: consume on use
	return pair.Private, true
}
