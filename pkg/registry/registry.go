// Package registry maintains the public key material — identity keys and
// published pre-key bundles — of other group members. Peers collect
// bundles opportunistically from the network; the registry filters out
// expired ones and picks the best available bundle when a handshake needs
// one.
package registry

import (
	"crypto/ed25519"
	"sync"

	"github.com/pion/logging"

	"github.com/backkem/groupcore/pkg/ids"
	"github.com/backkem/groupcore/pkg/keybundle"
)

// Config configures a Registry.
type Config struct {
	// LoggerFactory builds the registry's logger. If nil, logging is
	// disabled.
	LoggerFactory logging.LoggerFactory
}

// Registry is a mutex-guarded store of identity keys and pre-key bundles
// collected from other group members. It is safe for concurrent use: a
// network-facing goroutine can add freshly discovered bundles while the
// group processing goroutine consumes them to build handshake messages.
type Registry struct {
	mu sync.RWMutex

	identities map[ids.Identity]ed25519.PublicKey
	longTerm   map[ids.Identity][]keybundle.LongTermKeyBundle
	oneTime    map[ids.Identity][]keybundle.OneTimeKeyBundle

	log logging.LeveledLogger
}

// New creates an empty Registry.
func New(config Config) *Registry {
	r := &Registry{
		identities: make(map[ids.Identity]ed25519.PublicKey),
		longTerm:   make(map[ids.Identity][]keybundle.LongTermKeyBundle),
		oneTime:    make(map[ids.Identity][]keybundle.OneTimeKeyBundle),
	}
	if config.LoggerFactory != nil {
		r.log = config.LoggerFactory.NewLogger("registry")
	}
	return r
}

// AddLongTerm verifies and stores a member's long-term pre-key bundle.
// Returns an error if the bundle's signature is invalid or it is already
// expired at now; expired bundles are rejected outright rather than
// stored for later garbage collection. Returns ErrIdentityMismatch if id
// was previously registered under a different identity key.
func (r *Registry) AddLongTerm(id ids.Identity, bundle keybundle.LongTermKeyBundle, now int64) error {
	if err := bundle.Verify(now); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIdentityLocked(id, bundle.IdentityKey); err != nil {
		return err
	}
	r.longTerm[id] = append(r.longTerm[id], bundle)

	if r.log != nil {
		r.log.Debugf("registry: added long-term bundle for %s (total=%d)", id, len(r.longTerm[id]))
	}
	return nil
}

// AddOneTime verifies and stores a member's one-time pre-key bundle.
func (r *Registry) AddOneTime(id ids.Identity, bundle keybundle.OneTimeKeyBundle, now int64) error {
	if err := bundle.Verify(now); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIdentityLocked(id, bundle.IdentityKey); err != nil {
		return err
	}
	r.oneTime[id] = append(r.oneTime[id], bundle)

	if r.log != nil {
		r.log.Debugf("registry: added one-time bundle for %s (total=%d)", id, len(r.oneTime[id]))
	}
	return nil
}

// checkIdentityLocked records id's identity key on first sight and
// rejects subsequent bundles that claim a different one. Must be called
// with mu held.
func (r *Registry) checkIdentityLocked(id ids.Identity, identityKey ed25519.PublicKey) error {
	existing, ok := r.identities[id]
	if !ok {
		r.identities[id] = identityKey
		return nil
	}
	if string(existing) != string(identityKey) {
		return ErrIdentityMismatch
	}
	return nil
}

// IdentityKey returns the identity key registered for id, if any.
func (r *Registry) IdentityKey(id ids.Identity) (ed25519.PublicKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.identities[id]
	return key, ok
}

// TakeOneTime pops and returns one of id's one-time pre-key bundles, if
// any remain. Once returned, the bundle is removed from the registry and
// will not be handed out again.
func (r *Registry) TakeOneTime(id ids.Identity) (keybundle.OneTimeKeyBundle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bundles := r.oneTime[id]
	if len(bundles) == 0 {
		return keybundle.OneTimeKeyBundle{}, false
	}
	last := bundles[len(bundles)-1]
	r.oneTime[id] = bundles[:len(bundles)-1]

	if r.log != nil {
		r.log.Debugf("registry: consumed one-time bundle for %s (remaining=%d)", id, len(r.oneTime[id]))
	}
	return last, true
}

// LongTerm returns id's long-term pre-key bundle with the furthest-future
// expiry among those still valid at now. Returns ErrNoKeyBundle if no
// bundle was ever stored for id, or ErrKeyBundlesExpired if bundles exist
// but all of them have expired.
func (r *Registry) LongTerm(id ids.Identity, now int64) (keybundle.LongTermKeyBundle, error) {
	r.mu.RLock()
	bundles := append([]keybundle.LongTermKeyBundle(nil), r.longTerm[id]...)
	r.mu.RUnlock()

	if len(bundles) == 0 {
		return keybundle.LongTermKeyBundle{}, ErrNoKeyBundle
	}

	valid := make([]keybundle.LongTermKeyBundle, 0, len(bundles))
	for _, b := range bundles {
		if b.Verify(now) == nil {
			valid = append(valid, b)
		}
	}
	if len(valid) == 0 {
		return keybundle.LongTermKeyBundle{}, ErrKeyBundlesExpired
	}

	latest, _ := keybundle.LatestLongTerm(valid)
	return latest, nil
}

// RemoveExpired filters out every stored long-term and one-time bundle
// that is no longer valid at now. Callers typically run this
// periodically to bound registry memory growth.
func (r *Registry) RemoveExpired(now int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, bundles := range r.longTerm {
		kept := bundles[:0:0]
		for _, b := range bundles {
			if b.Verify(now) == nil {
				kept = append(kept, b)
			}
		}
		r.longTerm[id] = kept
	}
	for id, bundles := range r.oneTime {
		kept := bundles[:0:0]
		for _, b := range bundles {
			if b.Verify(now) == nil {
				kept = append(kept, b)
			}
		}
		r.oneTime[id] = kept
	}

	if r.log != nil {
		r.log.Trace("registry: garbage collected expired key bundles")
	}
}
