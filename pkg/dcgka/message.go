package dcgka

import (
	"encoding/binary"
	"fmt"

	"github.com/backkem/groupcore/pkg/crypto"
	"github.com/backkem/groupcore/pkg/ids"
	"github.com/backkem/groupcore/pkg/registry"
	"github.com/backkem/groupcore/pkg/secretbundle"
)

// handshakeLabel derives the AEAD key for a direct message from the
// shared X3DH-style secret.
const handshakeLabel = "dcgka-dm"

// DirectMessage is a single secret or secret bundle, sealed for one
// recipient. EphemeralPublic is the sender's one-shot X25519 public key
// for this handshake; OneTimePreKeyUsed, if set, names the recipient's
// one-time pre-key consumed alongside their long-term one.
type DirectMessage struct {
	Recipient         ids.Identity
	EphemeralPublic   [crypto.X25519KeySize]byte
	OneTimePreKeyUsed *[crypto.X25519KeySize]byte
	Nonce             [crypto.AEADNonceSize]byte
	Ciphertext        []byte
}

func encodeSecretPayload(s secretbundle.GroupSecret) []byte {
	buf := make([]byte, 0, crypto.SecretSize+8)
	buf = append(buf, s.Key.Bytes()...)
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(s.Timestamp))
	return append(buf, ts...)
}

func decodeSecretPayload(b []byte) (secretbundle.GroupSecret, error) {
	if len(b) != crypto.SecretSize+8 {
		return secretbundle.GroupSecret{}, ErrMalformedPayload
	}
	key, err := crypto.SecretFromBytes(b[:crypto.SecretSize])
	if err != nil {
		return secretbundle.GroupSecret{}, err
	}
	ts := int64(binary.BigEndian.Uint64(b[crypto.SecretSize:]))
	return secretbundle.NewGroupSecret(key, ts), nil
}

func encodeBundlePayload(secrets []secretbundle.GroupSecret) []byte {
	buf := make([]byte, 4, 4+len(secrets)*(crypto.SecretSize+8))
	binary.BigEndian.PutUint32(buf, uint32(len(secrets)))
	for _, s := range secrets {
		buf = append(buf, encodeSecretPayload(s)...)
	}
	return buf
}

func decodeBundlePayload(b []byte) ([]secretbundle.GroupSecret, error) {
	if len(b) < 4 {
		return nil, ErrMalformedPayload
	}
	count := binary.BigEndian.Uint32(b[:4])
	rest := b[4:]
	entrySize := crypto.SecretSize + 8
	if len(rest) != int(count)*entrySize {
		return nil, ErrMalformedPayload
	}
	out := make([]secretbundle.GroupSecret, 0, count)
	for i := 0; i < int(count); i++ {
		entry := rest[i*entrySize : (i+1)*entrySize]
		secret, err := decodeSecretPayload(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, secret)
	}
	return out, nil
}

// sealDirectMessage encrypts plaintext for recipient against their
// long-term pre-key and, when the registry holds one, also a one-time
// pre-key, which is consumed.
func sealDirectMessage(reg *registry.Registry, recipient ids.Identity, now int64, plaintext []byte) (DirectMessage, error) {
	longTerm, err := reg.LongTerm(recipient, now)
	if err != nil {
		return DirectMessage{}, fmt.Errorf("%w: %w", ErrNoRecipientKeyBundle, err)
	}

	ephemeral, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		return DirectMessage{}, err
	}

	combined, err := crypto.X25519(ephemeral.Private, longTerm.PreKey.Public)
	if err != nil {
		return DirectMessage{}, err
	}

	var oneTimeUsed *[crypto.X25519KeySize]byte
	if oneTime, ok := reg.TakeOneTime(recipient); ok {
		pub := oneTime.PreKey.Public
		oneTimeShared, err := crypto.X25519(ephemeral.Private, pub)
		if err != nil {
			return DirectMessage{}, err
		}
		combined = append(combined, oneTimeShared...)
		oneTimeUsed = &pub
	}

	key, err := deriveHandshakeKey(combined)
	if err != nil {
		return DirectMessage{}, err
	}

	nonceBytes, err := crypto.RandomBytes(crypto.AEADNonceSize)
	if err != nil {
		return DirectMessage{}, err
	}
	var nonce [crypto.AEADNonceSize]byte
	copy(nonce[:], nonceBytes)

	ciphertext, err := crypto.Seal(key, nonce[:], plaintext, recipient.Bytes())
	if err != nil {
		return DirectMessage{}, err
	}

	return DirectMessage{
		Recipient:         recipient,
		EphemeralPublic:   ephemeral.Public,
		OneTimePreKeyUsed: oneTimeUsed,
		Nonce:             nonce,
		Ciphertext:        ciphertext,
	}, nil
}

// openDirectMessage decrypts dm using the local key manager's long-term
// pre-key and, if referenced, a still-held one-time pre-key.
func openDirectMessage(keys *LocalKeys, dm DirectMessage) ([]byte, error) {
	combined, err := crypto.X25519(keys.LongTerm.Private, dm.EphemeralPublic)
	if err != nil {
		return nil, err
	}

	if dm.OneTimePreKeyUsed != nil {
		priv, ok := keys.oneTimePrivate(*dm.OneTimePreKeyUsed)
		if !ok {
			return nil, ErrUnknownPreKey
		}
		oneTimeShared, err := crypto.X25519(priv, dm.EphemeralPublic)
		if err != nil {
			return nil, err
		}
		combined = append(combined, oneTimeShared...)
	}

	key, err := deriveHandshakeKey(combined)
	if err != nil {
		return nil, err
	}

	return crypto.Open(key, dm.Nonce[:], dm.Ciphertext, dm.Recipient.Bytes())
}

func deriveHandshakeKey(combined []byte) (crypto.Secret, error) {
	keyBytes, err := crypto.HKDFLabel(combined, handshakeLabel, crypto.SecretSize)
	if err != nil {
		return crypto.Secret{}, err
	}
	return crypto.SecretFromBytes(keyBytes)
}
