// Package secretbundle maintains the set of symmetric secrets a group
// uses to encrypt and decrypt its content. Secrets are added whenever the
// group is updated, a member is added or removed, or an epoch is
// refreshed; old secrets are kept around until the application decides
// they are no longer needed, so forward secrecy here is "as strong as the
// application chooses to prune the bundle".
package secretbundle

import (
	"github.com/backkem/groupcore/pkg/crypto"
)

// GroupSecretID identifies a GroupSecret by the SHA-256 digest of its key
// material, letting a recipient tell a sender which secret decrypted (or
// should encrypt) a message without revealing the key itself.
type GroupSecretID [crypto.SHA256LenBytes]byte

// Less reports whether id sorts before other lexicographically. Used as
// the tie-breaker in Latest when two secrets share a timestamp.
func (id GroupSecretID) Less(other GroupSecretID) bool {
	for i := range id {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}

// GroupSecret is a single symmetric key known by the group, tagged with
// the Unix timestamp at which it was generated.
type GroupSecret struct {
	Key       crypto.Secret
	Timestamp int64
}

// NewGroupSecret builds a GroupSecret from the given key and timestamp.
func NewGroupSecret(key crypto.Secret, timestamp int64) GroupSecret {
	return GroupSecret{Key: key, Timestamp: timestamp}
}

// GenerateGroupSecret creates a new random GroupSecret stamped with now.
// The secret returned is not yet part of any Bundle; use Insert to add it.
func GenerateGroupSecret(now int64) (GroupSecret, error) {
	key, err := crypto.RandomSecret()
	if err != nil {
		return GroupSecret{}, err
	}
	return GroupSecret{Key: key, Timestamp: now}, nil
}

// ID returns the content-addressed identifier of the secret.
func (s GroupSecret) ID() GroupSecretID {
	return GroupSecretID(crypto.SHA256(s.Key[:]))
}

// Bundle is the set of secrets a group currently knows, plus a cached
// pointer to the "latest" one. Every mutating operation is a pure
// function from one Bundle value to the next, matching the rest of this
// module's state-threading style; callers hold the current Bundle value
// and replace it with the mutator's return value.
type Bundle struct {
	secrets map[GroupSecretID]GroupSecret
	latest  *GroupSecretID
}

// Init returns an empty Bundle.
func Init() Bundle {
	return Bundle{secrets: make(map[GroupSecretID]GroupSecret)}
}

// FromSecrets builds a Bundle from a list of secrets, e.g. ones recovered
// from a welcome message or loaded from storage.
func FromSecrets(secrets []GroupSecret) Bundle {
	b := Bundle{secrets: make(map[GroupSecretID]GroupSecret, len(secrets))}
	for _, s := range secrets {
		b.secrets[s.ID()] = s
	}
	b.latest = findLatest(b.secrets)
	return b
}

// Len returns the number of secrets in the bundle.
func (b Bundle) Len() int {
	return len(b.secrets)
}

// IsEmpty reports whether the bundle holds no secrets.
func (b Bundle) IsEmpty() bool {
	return len(b.secrets) == 0
}

// Get looks up a secret by id.
func (b Bundle) Get(id GroupSecretID) (GroupSecret, bool) {
	s, ok := b.secrets[id]
	return s, ok
}

// Contains reports whether the bundle holds a secret with the given id.
func (b Bundle) Contains(id GroupSecretID) bool {
	_, ok := b.secrets[id]
	return ok
}

// Latest returns the secret that should preferably be used to encrypt new
// content: the one with the highest timestamp, breaking ties by the
// lexicographically greatest id.
func (b Bundle) Latest() (GroupSecret, bool) {
	if b.latest == nil {
		return GroupSecret{}, false
	}
	s, ok := b.secrets[*b.latest]
	return s, ok
}

// Secrets returns a copy of all secrets in the bundle, order unspecified.
func (b Bundle) Secrets() []GroupSecret {
	out := make([]GroupSecret, 0, len(b.secrets))
	for _, s := range b.secrets {
		out = append(out, s)
	}
	return out
}

// Generate creates a new random secret, forcing its timestamp to be
// strictly after the bundle's current latest timestamp. This guards
// against a peer whose system clock lags: without the adjustment, a
// freshly generated secret could sort behind an older one and never
// become the bundle's "latest".
func Generate(b Bundle, now int64) (GroupSecret, error) {
	secret, err := GenerateGroupSecret(now)
	if err != nil {
		return GroupSecret{}, err
	}

	var latestTimestamp int64
	if latest, ok := b.Latest(); ok {
		latestTimestamp = latest.Timestamp
	}
	if secret.Timestamp <= latestTimestamp {
		secret.Timestamp = latestTimestamp + 1
	}
	return secret, nil
}

// Insert adds secret to the bundle, overwriting any existing secret with
// the same id, and returns the updated bundle.
func Insert(b Bundle, secret GroupSecret) Bundle {
	next := b.clone()
	next.secrets[secret.ID()] = secret
	next.latest = findLatest(next.secrets)
	return next
}

// Remove deletes the secret with the given id from the bundle, returning
// the updated bundle and the removed secret, if any.
func Remove(b Bundle, id GroupSecretID) (Bundle, GroupSecret, bool) {
	next := b.clone()
	removed, ok := next.secrets[id]
	delete(next.secrets, id)
	next.latest = findLatest(next.secrets)
	return next, removed, ok
}

// Extend merges other's secrets into b, overwriting duplicates, and
// returns the updated bundle.
func Extend(b Bundle, other Bundle) Bundle {
	next := b.clone()
	for id, s := range other.secrets {
		next.secrets[id] = s
	}
	next.latest = findLatest(next.secrets)
	return next
}

func (b Bundle) clone() Bundle {
	secrets := make(map[GroupSecretID]GroupSecret, len(b.secrets))
	for id, s := range b.secrets {
		secrets[id] = s
	}
	return Bundle{secrets: secrets}
}

// findLatest picks the secret id with the highest timestamp, breaking
// ties by the lexicographically greatest id, mirroring the original
// find_latest comparator exactly so independently-built bundles converge
// on the same "latest" pointer.
func findLatest(secrets map[GroupSecretID]GroupSecret) *GroupSecretID {
	var latestTimestamp int64 = -1
	var latestID GroupSecretID
	found := false

	for id, s := range secrets {
		if !found {
			latestTimestamp = s.Timestamp
			latestID = id
			found = true
			continue
		}
		if s.Timestamp > latestTimestamp || (s.Timestamp == latestTimestamp && latestID.Less(id)) {
			latestTimestamp = s.Timestamp
			latestID = id
		}
	}

	if !found {
		return nil
	}
	out := latestID
	return &out
}
