package wire

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/backkem/groupcore/pkg/crypto"
	"github.com/backkem/groupcore/pkg/secretbundle"
)

// WireGroupSecret is a single symmetric secret plus the timestamp used
// to break ties when selecting the bundle's latest secret.
type WireGroupSecret struct {
	Key       []byte `cbor:"key"`
	Timestamp uint64 `cbor:"timestamp"`
}

// EncodeGroupSecret returns the canonical CBOR encoding of secret.
func EncodeGroupSecret(secret secretbundle.GroupSecret) ([]byte, error) {
	return cbor.Marshal(groupSecretToWire(secret))
}

// DecodeGroupSecret parses the CBOR encoding produced by
// EncodeGroupSecret.
func DecodeGroupSecret(data []byte) (secretbundle.GroupSecret, error) {
	var wired WireGroupSecret
	if err := cbor.Unmarshal(data, &wired); err != nil {
		return secretbundle.GroupSecret{}, err
	}
	return groupSecretFromWire(wired)
}

// EncodeSecretBundle returns the canonical CBOR encoding of every
// secret in the bundle, as a sequence of WireGroupSecret values.
func EncodeSecretBundle(bundle secretbundle.Bundle) ([]byte, error) {
	secrets := bundle.Secrets()
	wired := make([]WireGroupSecret, 0, len(secrets))
	for _, s := range secrets {
		wired = append(wired, groupSecretToWire(s))
	}
	return cbor.Marshal(wired)
}

// DecodeSecretBundle parses the CBOR encoding produced by
// EncodeSecretBundle.
func DecodeSecretBundle(data []byte) (secretbundle.Bundle, error) {
	var wired []WireGroupSecret
	if err := cbor.Unmarshal(data, &wired); err != nil {
		return secretbundle.Bundle{}, err
	}
	secrets := make([]secretbundle.GroupSecret, 0, len(wired))
	for _, w := range wired {
		secret, err := groupSecretFromWire(w)
		if err != nil {
			return secretbundle.Bundle{}, err
		}
		secrets = append(secrets, secret)
	}
	return secretbundle.FromSecrets(secrets), nil
}

func groupSecretToWire(s secretbundle.GroupSecret) WireGroupSecret {
	return WireGroupSecret{Key: s.Key.Bytes(), Timestamp: uint64(s.Timestamp)}
}

func groupSecretFromWire(w WireGroupSecret) (secretbundle.GroupSecret, error) {
	if len(w.Key) != crypto.SecretSize {
		return secretbundle.GroupSecret{}, ErrMalformedSecretBundle
	}
	key, err := crypto.SecretFromBytes(w.Key)
	if err != nil {
		return secretbundle.GroupSecret{}, err
	}
	return secretbundle.NewGroupSecret(key, int64(w.Timestamp)), nil
}
