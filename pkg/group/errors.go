package group

import "errors"

// Package group errors.
var (
	// ErrCreateMustBeRoot is returned when a Create action is processed
	// with one or more dependencies. A group's creation operation must
	// be the sole root of its operation graph.
	ErrCreateMustBeRoot = errors.New("group: create action must have no dependencies")

	// ErrRevokeOfCreate is a fatal configuration error: a create
	// operation can never be revoked, since doing so would leave the
	// group with no well-defined initial state.
	ErrRevokeOfCreate = errors.New("group: cannot revoke a create operation")

	// ErrUnknownMember is returned when an action references a member
	// that is not present in the state it was applied to.
	ErrUnknownMember = errors.New("group: unknown member")

	// ErrNotAuthorized is returned when the acting member lacks the
	// access level required to perform the action.
	ErrNotAuthorized = errors.New("group: actor not authorized to perform this action")

	// ErrUnknownDependency is returned when StateAt is asked for a state
	// at an operation id that was never processed.
	ErrUnknownDependency = errors.New("group: unknown dependency operation")

	// ErrUnknownOperation is returned when add-with-rebuild is asked to
	// replay an operation id that isn't present in its operations map.
	ErrUnknownOperation = errors.New("group: unknown operation")

	// ErrInvalidAction is returned for malformed control messages: one
	// that is neither a GroupAction nor a Revoke, or a GroupAction with
	// a kind that doesn't match its populated fields.
	ErrInvalidAction = errors.New("group: invalid control message")
)
