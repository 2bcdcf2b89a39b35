package store

import (
	"sync"

	"github.com/backkem/groupcore/pkg/crypto"
	"github.com/backkem/groupcore/pkg/dcgka"
	"github.com/backkem/groupcore/pkg/ids"
	"github.com/backkem/groupcore/pkg/keybundle"
	"github.com/backkem/groupcore/pkg/registry"
)

// KeyStore owns the local identity's secret material and the registry
// of peer key bundles collected from the network.
type KeyStore interface {
	// LoadIdentity returns the local identity's key material, generating
	// it on first use.
	LoadIdentity() (*dcgka.LocalKeys, error)

	// RotatePreKey generates and returns a fresh long-term pre-key
	// bundle valid for lifetime, replacing whichever one LoadIdentity's
	// keys previously published.
	RotatePreKey(lifetime keybundle.Lifetime) (keybundle.LongTermKeyBundle, error)

	// LoadRegistry returns the registry of peer key bundles collected so
	// far.
	LoadRegistry() (*registry.Registry, error)

	// InsertRegistryBundle verifies and stores a peer's long-term key
	// bundle.
	InsertRegistryBundle(id ids.Identity, bundle keybundle.LongTermKeyBundle, now int64) error
}

// MemoryKeyStore is an in-memory KeyStore for tests and single-process
// deployments: the local identity is generated lazily on first
// LoadIdentity and held for the process lifetime.
type MemoryKeyStore struct {
	mu       sync.Mutex
	keys     *dcgka.LocalKeys
	registry *registry.Registry
}

// NewMemoryKeyStore creates a MemoryKeyStore backed by reg.
func NewMemoryKeyStore(reg *registry.Registry) *MemoryKeyStore {
	return &MemoryKeyStore{registry: reg}
}

// LoadIdentity returns the local identity's key material, generating it
// on first use.
func (s *MemoryKeyStore) LoadIdentity() (*dcgka.LocalKeys, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys != nil {
		return s.keys, nil
	}
	keys, err := dcgka.NewLocalKeys()
	if err != nil {
		return nil, err
	}
	s.keys = keys
	return keys, nil
}

// RotatePreKey generates and returns a fresh long-term pre-key bundle.
func (s *MemoryKeyStore) RotatePreKey(lifetime keybundle.Lifetime) (keybundle.LongTermKeyBundle, error) {
	keys, err := s.LoadIdentity()
	if err != nil {
		return keybundle.LongTermKeyBundle{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	longTerm, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		return keybundle.LongTermKeyBundle{}, err
	}
	keys.LongTerm = longTerm
	return keys.LongTermKeyBundle(lifetime), nil
}

// LoadRegistry returns the registry of peer key bundles collected so
// far.
func (s *MemoryKeyStore) LoadRegistry() (*registry.Registry, error) {
	return s.registry, nil
}

// InsertRegistryBundle verifies and stores a peer's long-term key
// bundle.
func (s *MemoryKeyStore) InsertRegistryBundle(id ids.Identity, bundle keybundle.LongTermKeyBundle, now int64) error {
	return s.registry.AddLongTerm(id, bundle, now)
}
