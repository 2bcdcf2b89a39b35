// Package orderer establishes a partial (causal) order over a set of
// operations that form a dependency graph. An operation becomes "ready"
// once every operation it depends on has itself become ready; until
// then it waits in a "pending" queue. No cycle detection happens here —
// operation identifiers are content-addressed, which already rules out
// cycles; see pkg/authority for the separate concurrency-introduced
// cycle the authority graph guards against.
package orderer

import (
	"sync"

	"github.com/pion/logging"
)

// Config configures an Orderer.
type Config struct {
	// LoggerFactory builds the orderer's logger. If nil, logging is
	// disabled.
	LoggerFactory logging.LoggerFactory
}

// Orderer is a mutex-guarded partial-order tracker. It is safe for
// concurrent use, since in practice operations are fed to it from
// multiple transport goroutines while a single processing goroutine
// drains the ready queue with Next.
type Orderer[ID comparable] struct {
	mu sync.Mutex

	ready      map[ID]struct{}
	pending    map[ID][]ID // item -> its dependencies, while still pending
	readyQueue []ID

	log logging.LeveledLogger
}

// New creates an empty Orderer.
func New[ID comparable](config Config) *Orderer[ID] {
	o := &Orderer[ID]{
		ready:   make(map[ID]struct{}),
		pending: make(map[ID][]ID),
	}
	if config.LoggerFactory != nil {
		o.log = config.LoggerFactory.NewLogger("orderer")
	}
	return o
}

// Next pops and returns the next item from the ready queue, in the order
// it became ready.
func (o *Orderer[ID]) Next() (ID, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.readyQueue) == 0 {
		var zero ID
		return zero, false
	}
	item := o.readyQueue[0]
	o.readyQueue = o.readyQueue[1:]
	return item, true
}

// Process submits key with its dependencies. If every dependency is
// already ready, key becomes ready immediately and any pending items
// that were waiting on key are recursively re-checked. Otherwise key is
// held in the pending queue until its dependencies catch up.
//
// Process is idempotent: a key already ready or pending is a silent
// no-op, since a duplicate delivery of a content-addressed operation
// must never fail the orderer.
func (o *Orderer[ID]) Process(key ID, dependencies []ID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.ready[key]; ok {
		return nil
	}
	if _, ok := o.pending[key]; ok {
		return nil
	}

	if !o.isReadyLocked(dependencies) {
		deps := append([]ID(nil), dependencies...)
		o.pending[key] = deps
		if o.log != nil {
			o.log.Debugf("orderer: item pending (missing dependencies)")
		}
		return nil
	}

	o.markReadyLocked(key)
	o.processPendingLocked(key)
	return nil
}

func (o *Orderer[ID]) isReadyLocked(dependencies []ID) bool {
	for _, dep := range dependencies {
		if _, ok := o.ready[dep]; !ok {
			return false
		}
	}
	return true
}

func (o *Orderer[ID]) markReadyLocked(key ID) {
	o.ready[key] = struct{}{}
	delete(o.pending, key)
	o.readyQueue = append(o.readyQueue, key)
}

// processPendingLocked recursively promotes pending items whose
// dependencies have just been satisfied by key becoming ready.
func (o *Orderer[ID]) processPendingLocked(key ID) {
	var dependents []ID
	for item, deps := range o.pending {
		for _, dep := range deps {
			if dep == key {
				dependents = append(dependents, item)
				break
			}
		}
	}

	for _, item := range dependents {
		deps, stillPending := o.pending[item]
		if !stillPending {
			continue
		}
		if !o.isReadyLocked(deps) {
			continue
		}
		o.markReadyLocked(item)
		o.processPendingLocked(item)
	}
}

// ReadyLen returns the number of items that have become ready so far
// (including ones already popped via Next).
func (o *Orderer[ID]) ReadyLen() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.ready)
}

// PendingLen returns the number of items currently waiting on
// unsatisfied dependencies.
func (o *Orderer[ID]) PendingLen() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// ReadyQueueLen returns the number of ready items not yet popped by Next.
func (o *Orderer[ID]) ReadyQueueLen() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.readyQueue)
}
