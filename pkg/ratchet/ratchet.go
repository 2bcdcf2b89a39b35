// Package ratchet implements the forward-ratcheting message key chain
// used to encrypt and decrypt application content within a group epoch,
// together with a decryption-side window that tolerates messages
// arriving out of order or being dropped entirely.
package ratchet

import (
	"math"

	"github.com/backkem/groupcore/pkg/crypto"
)

// Generation numbers a position in the ratchet chain.
type Generation uint32

// KeyMaterial is the AEAD key and nonce derived for one generation of the
// ratchet.
type KeyMaterial struct {
	Key   crypto.Secret
	Nonce [crypto.AEADNonceSize]byte
}

// SecretState holds the current chain secret and generation counter of a
// message ratchet. It advances one step at a time via RatchetForward,
// each step irreversibly discarding the previous chain secret.
type SecretState struct {
	secret     crypto.Secret
	generation Generation
}

// Init starts a new ratchet chain from secret at generation 0.
func Init(secret crypto.Secret) SecretState {
	return SecretState{secret: secret, generation: 0}
}

// Generation returns the ratchet's current generation.
func (s SecretState) Generation() Generation {
	return s.generation
}

// RatchetForward derives key material for the current generation, then
// advances the chain secret for the next one. Returns the advanced
// state, the generation the returned key material belongs to (the one
// before advancing), and that key material.
func RatchetForward(y SecretState) (SecretState, Generation, KeyMaterial, error) {
	generation := y.generation

	nonceBytes, err := crypto.HKDFLabel(y.secret[:], "nonce", crypto.AEADNonceSize)
	if err != nil {
		return y, 0, KeyMaterial{}, err
	}
	keyBytes, err := crypto.HKDFLabel(y.secret[:], "key", crypto.SecretSize)
	if err != nil {
		return y, 0, KeyMaterial{}, err
	}
	chainBytes, err := crypto.HKDFLabel(y.secret[:], "chain", crypto.SecretSize)
	if err != nil {
		return y, 0, KeyMaterial{}, err
	}

	key, err := crypto.SecretFromBytes(keyBytes)
	if err != nil {
		return y, 0, KeyMaterial{}, err
	}
	nextSecret, err := crypto.SecretFromBytes(chainBytes)
	if err != nil {
		return y, 0, KeyMaterial{}, err
	}

	material := KeyMaterial{Key: key}
	copy(material.Nonce[:], nonceBytes)

	next := SecretState{secret: nextSecret, generation: y.generation + 1}
	return next, generation, material, nil
}

// DecryptionState wraps a ratchet head together with a window of
// previously-derived-but-unused key material, letting the decrypting
// side "jump ahead" when a message arrives out of order and still
// recover the secrets for generations it skipped over.
type DecryptionState struct {
	// pastSecrets holds recently ratcheted-past key material, most
	// recent first, mirroring a VecDeque with push_front. An entry is
	// nil once consumed (taken) or if it was deliberately never kept
	// (the generation that was delivered in order).
	pastSecrets []*KeyMaterial
	head        SecretState
}

// InitDecryption starts a new decryption ratchet from secret.
func InitDecryption(secret crypto.Secret) DecryptionState {
	return DecryptionState{head: Init(secret)}
}

// Head returns the decryption ratchet's current head state.
func (d DecryptionState) Head() SecretState {
	return d.head
}

// SecretForDecryption returns the key material for the given generation.
//
//   - If generation is within maxForwardDistance of the ratchet's current
//     head, the chain is advanced as needed and any intermediate
//     generations are cached for later (within the bound of
//     oooTolerance).
//   - If generation already lies behind the head, it is served from the
//     cache, consuming the cached entry so it cannot be reused.
//
// Returns TooDistantInTheFuture, TooDistantInThePast, IndexOutOfBounds,
// or SecretReuse when generation cannot be served.
func SecretForDecryption(y DecryptionState, generation Generation, maxForwardDistance, oooTolerance uint32) (DecryptionState, KeyMaterial, error) {
	generationHead := y.head.generation

	if uint32(generationHead) < math.MaxUint32-maxForwardDistance &&
		uint32(generation) > uint32(generationHead)+maxForwardDistance {
		return y, KeyMaterial{}, ErrTooDistantInTheFuture
	}

	if generation < generationHead && uint32(generationHead-generation) > oooTolerance {
		return y, KeyMaterial{}, ErrTooDistantInThePast
	}

	if generation >= generationHead {
		for i := Generation(0); i < generation-generationHead; i++ {
			head, _, material, err := RatchetForward(y.head)
			if err != nil {
				return y, KeyMaterial{}, err
			}
			y.head = head
			m := material
			y.pastSecrets = pushFront(y.pastSecrets, &m)
		}

		head, _, material, err := RatchetForward(y.head)
		if err != nil {
			return y, KeyMaterial{}, err
		}
		y.head = head
		y.pastSecrets = pushFront(y.pastSecrets, nil)
		y.pastSecrets = truncate(y.pastSecrets, int(oooTolerance))

		return y, material, nil
	}

	windowIndex := int(generationHead-generation) - 1
	if windowIndex < 0 {
		return y, KeyMaterial{}, ErrTooDistantInThePast
	}
	if windowIndex >= len(y.pastSecrets) {
		return y, KeyMaterial{}, ErrIndexOutOfBounds
	}
	entry := y.pastSecrets[windowIndex]
	if entry == nil {
		return y, KeyMaterial{}, ErrSecretReuse
	}
	y.pastSecrets[windowIndex] = nil
	return y, *entry, nil
}

func pushFront(secrets []*KeyMaterial, item *KeyMaterial) []*KeyMaterial {
	out := make([]*KeyMaterial, 0, len(secrets)+1)
	out = append(out, item)
	out = append(out, secrets...)
	return out
}

func truncate(secrets []*KeyMaterial, n int) []*KeyMaterial {
	if n < 0 {
		n = 0
	}
	if len(secrets) <= n {
		return secrets
	}
	return secrets[:n]
}
