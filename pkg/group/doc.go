// Package group implements the decentralized group-membership state
// machine: a CRDT-like members set that converges under concurrent
// add/remove/promote/demote operations, an operation DAG recording how
// those actions depend on one another, and a resolver that detects and
// breaks mutual-remove cycles (pkg/authority) by ignoring one operation
// per cycle.
package group
