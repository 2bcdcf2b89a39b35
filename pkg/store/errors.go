package store

import "errors"

// Package store errors.
var (
	// ErrOperationNotFound names an operation id the store has never
	// seen. MemoryOperationStore.Get does not return it; it reports a
	// missing operation with ok=false and a nil error.
	ErrOperationNotFound = errors.New("store: operation not found")

	// ErrGroupNotFound names a group the store holds no operations for.
	// MemoryOperationStore does not return it: Heads and Topological
	// report an unknown group as empty, with a nil error.
	ErrGroupNotFound = errors.New("store: group not found")

	// ErrCyclicOperationGraph is a fatal invariant violation: the stored
	// dependency graph for a group is not a DAG, so no topological order
	// exists. Per the core's error taxonomy this is an implementation
	// bug, not a recoverable condition.
	ErrCyclicOperationGraph = errors.New("store: operation dependency graph is cyclic")

	// ErrNoKeyBundle names a key store with no identity material.
	// MemoryKeyStore does not return it: LoadIdentity and RotatePreKey
	// generate the identity on first use.
	ErrNoKeyBundle = errors.New("store: no key material available")
)
