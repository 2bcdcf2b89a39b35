package wire

import (
	"crypto/ed25519"

	"github.com/fxamacker/cbor/v2"

	"github.com/backkem/groupcore/pkg/keybundle"
)

// WireLifetime is a pre-key's validity window.
type WireLifetime struct {
	NotBefore uint64 `cbor:"not_before"`
	NotAfter  uint64 `cbor:"not_after"`
}

// WirePreKey is a pre-key's public half plus its validity window.
type WirePreKey struct {
	Key      []byte       `cbor:"key"`
	Lifetime WireLifetime `cbor:"lifetime"`
}

// WireLongTermKeyBundle is the CBOR encoding of a signed pre-key bundle,
// shared by both keybundle.LongTermKeyBundle and keybundle.OneTimeKeyBundle
// (the two differ only in the registry's handling of them, not in shape).
type WireLongTermKeyBundle struct {
	IdentityKey []byte     `cbor:"identity_key"`
	PreKey      WirePreKey `cbor:"prekey"`
	Signature   []byte     `cbor:"signature"`
}

// EncodeLongTermKeyBundle returns the canonical CBOR encoding of bundle.
func EncodeLongTermKeyBundle(bundle keybundle.LongTermKeyBundle) ([]byte, error) {
	return cbor.Marshal(longTermToWire(bundle))
}

// DecodeLongTermKeyBundle parses the CBOR encoding produced by
// EncodeLongTermKeyBundle.
func DecodeLongTermKeyBundle(data []byte) (keybundle.LongTermKeyBundle, error) {
	var wired WireLongTermKeyBundle
	if err := cbor.Unmarshal(data, &wired); err != nil {
		return keybundle.LongTermKeyBundle{}, err
	}
	preKey, err := preKeyFromWire(wired.PreKey)
	if err != nil {
		return keybundle.LongTermKeyBundle{}, err
	}
	return keybundle.LongTermKeyBundle{
		IdentityKey: ed25519.PublicKey(wired.IdentityKey),
		PreKey:      preKey,
		Signature:   wired.Signature,
	}, nil
}

// EncodeOneTimeKeyBundle returns the canonical CBOR encoding of bundle.
func EncodeOneTimeKeyBundle(bundle keybundle.OneTimeKeyBundle) ([]byte, error) {
	wired := WireLongTermKeyBundle{
		IdentityKey: []byte(bundle.IdentityKey),
		PreKey:      preKeyToWire(bundle.PreKey),
		Signature:   bundle.Signature,
	}
	return cbor.Marshal(wired)
}

// DecodeOneTimeKeyBundle parses the CBOR encoding produced by
// EncodeOneTimeKeyBundle.
func DecodeOneTimeKeyBundle(data []byte) (keybundle.OneTimeKeyBundle, error) {
	var wired WireLongTermKeyBundle
	if err := cbor.Unmarshal(data, &wired); err != nil {
		return keybundle.OneTimeKeyBundle{}, err
	}
	preKey, err := preKeyFromWire(wired.PreKey)
	if err != nil {
		return keybundle.OneTimeKeyBundle{}, err
	}
	return keybundle.OneTimeKeyBundle{
		IdentityKey: ed25519.PublicKey(wired.IdentityKey),
		PreKey:      preKey,
		Signature:   wired.Signature,
	}, nil
}

func longTermToWire(bundle keybundle.LongTermKeyBundle) WireLongTermKeyBundle {
	return WireLongTermKeyBundle{
		IdentityKey: []byte(bundle.IdentityKey),
		PreKey:      preKeyToWire(bundle.PreKey),
		Signature:   bundle.Signature,
	}
}

func preKeyToWire(p keybundle.PreKey) WirePreKey {
	return WirePreKey{
		Key: append([]byte(nil), p.Public[:]...),
		Lifetime: WireLifetime{
			NotBefore: uint64(p.Lifetime.NotBefore),
			NotAfter:  uint64(p.Lifetime.NotAfter),
		},
	}
}

func preKeyFromWire(w WirePreKey) (keybundle.PreKey, error) {
	if len(w.Key) != 32 {
		return keybundle.PreKey{}, ErrMalformedKeyBundle
	}
	var pub [32]byte
	copy(pub[:], w.Key)
	return keybundle.PreKey{
		Public: pub,
		Lifetime: keybundle.LifetimeFromRange(
			int64(w.Lifetime.NotBefore),
			int64(w.Lifetime.NotAfter),
		),
	}, nil
}
