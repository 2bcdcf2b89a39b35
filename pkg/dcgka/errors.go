package dcgka

import "errors"

// Package dcgka errors.
var (
	// ErrNotOurDirectMessage is returned when processing a Remove that
	// targets the local identity: the member was just removed and has
	// no way to decrypt whatever secret was sent to the remaining
	// members, which is the expected and correct outcome, not a bug.
	ErrNotOurDirectMessage = errors.New("dcgka: cannot decrypt direct message for a removed member")

	// ErrNoRecipientKeyBundle is returned when sealing a direct message
	// to a recipient with no usable pre-key in the registry.
	ErrNoRecipientKeyBundle = errors.New("dcgka: recipient has no usable key bundle")

	// ErrUnknownPreKey is returned when opening a direct message that
	// references a pre-key the local key manager does not hold.
	ErrUnknownPreKey = errors.New("dcgka: direct message references an unknown pre-key")

	// ErrUnauthorizedSender names an inbound operation whose sender
	// lacks the authority to perform the action it carries. Engine does
	// not return it: group.State accepts such an operation into its DAG
	// and ignores its effect on membership.
	ErrUnauthorizedSender = errors.New("dcgka: sender not authorized for this action")

	// ErrMalformedPayload is returned when a direct message payload
	// fails to decode to the shape its action implies.
	ErrMalformedPayload = errors.New("dcgka: malformed direct message payload")
)
