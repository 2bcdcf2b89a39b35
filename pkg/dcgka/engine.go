package dcgka

import (
	"github.com/pion/logging"

	"github.com/backkem/groupcore/pkg/access"
	"github.com/backkem/groupcore/pkg/group"
	"github.com/backkem/groupcore/pkg/ids"
	"github.com/backkem/groupcore/pkg/registry"
	"github.com/backkem/groupcore/pkg/secretbundle"
)

// Config configures a new Engine.
type Config struct {
	LoggerFactory logging.LoggerFactory
}

// Output is everything an Engine call produces for the caller to send
// out: a group control operation (absent for a plain Update that only
// rotates the secret bundle) and the direct messages carrying fresh
// secrets to the members who need them.
type Output struct {
	Operation      *group.Operation
	DirectMessages []DirectMessage
}

// ProcessResult is what processing a single inbound operation yielded
// for the local identity. Secret is the zero value when the operation
// carried no direct message for us, or when the group rejected it.
type ProcessResult struct {
	Secret     secretbundle.GroupSecret
	HaveSecret bool
}

// Engine is one member's view of a single group's key agreement state:
// its own key material, the public keys it has collected for other
// members, the group's membership DAG, and the symmetric secrets it
// currently holds.
type Engine struct {
	myID     ids.Identity
	keys     *LocalKeys
	registry *registry.Registry
	group    *group.State
	bundle   secretbundle.Bundle

	log logging.LeveledLogger
}

// New creates an Engine for myID. The registry should already be
// populated with (or later fed) the key bundles of any peer the engine
// will add to or recover secrets from.
func New(myID ids.Identity, keys *LocalKeys, reg *registry.Registry, config Config) *Engine {
	e := &Engine{
		myID:     myID,
		keys:     keys,
		registry: reg,
		group:    group.New(myID, group.Config{LoggerFactory: config.LoggerFactory}),
		bundle:   secretbundle.Init(),
	}
	if config.LoggerFactory != nil {
		e.log = config.LoggerFactory.NewLogger("dcgka")
	}
	return e
}

// Members returns the group's current member list.
func (e *Engine) Members() []group.InitialMember {
	return e.group.Members()
}

// Secrets returns the group secrets the engine currently holds.
func (e *Engine) Secrets() []secretbundle.GroupSecret {
	return e.bundle.Secrets()
}

// Create starts a new group with the local identity plus members,
// minting a fresh secret and sending it to every initial member.
func (e *Engine) Create(members []group.InitialMember, now int64) (Output, error) {
	initial := append([]group.InitialMember{{Member: e.myID, Access: access.Manage}}, members...)

	action := group.GroupAction{Kind: group.ActionCreate, InitialMembers: initial}
	payload := group.NewActionMessage(action)
	op := e.newOperation(nil, payload)

	if err := e.group.Process(op); err != nil {
		return Output{}, err
	}

	secret, err := secretbundle.Generate(e.bundle, now)
	if err != nil {
		return Output{}, err
	}
	e.bundle = secretbundle.Insert(e.bundle, secret)

	dms, err := e.sealToEveryoneBut(members, e.myID, now, encodeSecretPayload(secret))
	if err != nil {
		return Output{}, err
	}

	return Output{Operation: &op, DirectMessages: dms}, nil
}

// Add invites member into the group, sending it the full secret
// bundle so it can decrypt anything already shared with the group.
func (e *Engine) Add(member ids.Identity, memberAccess access.Access, now int64) (Output, error) {
	action := group.GroupAction{Kind: group.ActionAdd, Member: member, Access: memberAccess}
	payload := group.NewActionMessage(action)
	op := e.newOperation(e.group.Heads(), payload)

	if err := e.group.Process(op); err != nil {
		return Output{}, err
	}

	dm, err := sealDirectMessage(e.registry, member, now, encodeBundlePayload(e.bundle.Secrets()))
	if err != nil {
		return Output{}, err
	}

	return Output{Operation: &op, DirectMessages: []DirectMessage{dm}}, nil
}

// Remove excludes member from the group and rotates the secret,
// delivering the fresh one to every member still in the group but the
// one being removed.
func (e *Engine) Remove(member ids.Identity, now int64) (Output, error) {
	action := group.GroupAction{Kind: group.ActionRemove, Member: member}
	payload := group.NewActionMessage(action)
	op := e.newOperation(e.group.Heads(), payload)

	if err := e.group.Process(op); err != nil {
		return Output{}, err
	}

	secret, err := secretbundle.Generate(e.bundle, now)
	if err != nil {
		return Output{}, err
	}
	e.bundle = secretbundle.Insert(e.bundle, secret)

	remaining := e.group.Members()
	dms, err := e.sealToEveryoneBut(remaining, member, now, encodeSecretPayload(secret))
	if err != nil {
		return Output{}, err
	}

	return Output{Operation: &op, DirectMessages: dms}, nil
}

// Update rotates the group secret without changing membership,
// distributing the new secret to every other current member. Because
// it never touches the membership DAG, Update produces no control
// operation, only direct messages; recipients recover the secret with
// ProcessDirectMessage rather than Process.
func (e *Engine) Update(now int64) (Output, error) {
	secret, err := secretbundle.Generate(e.bundle, now)
	if err != nil {
		return Output{}, err
	}
	e.bundle = secretbundle.Insert(e.bundle, secret)

	members := e.group.Members()
	dms, err := e.sealToEveryoneBut(members, e.myID, now, encodeSecretPayload(secret))
	if err != nil {
		return Output{}, err
	}

	return Output{DirectMessages: dms}, nil
}

// Process applies an inbound group operation plus, if it was addressed
// to the local identity, the direct message carrying the secret
// material it distributes.
//
// Per the Remove path: when the operation removes the local identity,
// ErrNotOurDirectMessage is returned alongside the now-applied
// membership change — the member has correctly lost access and cannot
// recover whatever secret was sent to those who remain.
func (e *Engine) Process(op group.Operation, dm *DirectMessage) (ProcessResult, error) {
	if op.Payload.Action != nil && op.Payload.Action.Kind == group.ActionRemove &&
		op.Payload.Action.Member == e.myID {
		if err := e.group.Process(op); err != nil {
			return ProcessResult{}, err
		}
		return ProcessResult{}, ErrNotOurDirectMessage
	}

	if err := e.group.Process(op); err != nil {
		return ProcessResult{}, err
	}

	if dm == nil || dm.Recipient != e.myID {
		return ProcessResult{}, nil
	}

	plaintext, err := openDirectMessage(e.keys, *dm)
	if err != nil {
		return ProcessResult{}, err
	}

	if op.Payload.Action != nil && op.Payload.Action.Kind == group.ActionAdd && op.Payload.Action.Member == e.myID {
		secrets, err := decodeBundlePayload(plaintext)
		if err != nil {
			return ProcessResult{}, err
		}
		for _, s := range secrets {
			e.bundle = secretbundle.Insert(e.bundle, s)
		}
		latest, ok := e.bundle.Latest()
		return ProcessResult{Secret: latest, HaveSecret: ok}, nil
	}

	secret, err := decodeSecretPayload(plaintext)
	if err != nil {
		return ProcessResult{}, err
	}
	e.bundle = secretbundle.Insert(e.bundle, secret)
	return ProcessResult{Secret: secret, HaveSecret: true}, nil
}

// ProcessDirectMessage recovers the secret from a direct message that
// arrived without an accompanying control operation, as produced by
// Update. Returns HaveSecret false if dm is not addressed to us.
func (e *Engine) ProcessDirectMessage(dm DirectMessage) (ProcessResult, error) {
	if dm.Recipient != e.myID {
		return ProcessResult{}, nil
	}

	plaintext, err := openDirectMessage(e.keys, dm)
	if err != nil {
		return ProcessResult{}, err
	}

	secret, err := decodeSecretPayload(plaintext)
	if err != nil {
		return ProcessResult{}, err
	}
	e.bundle = secretbundle.Insert(e.bundle, secret)
	return ProcessResult{Secret: secret, HaveSecret: true}, nil
}

func (e *Engine) newOperation(deps []ids.OperationID, payload group.ControlMessage) group.Operation {
	id := group.ComputeOperationID(e.myID, deps, payload)
	return group.Operation{ID: id, Sender: e.myID, Dependencies: deps, Payload: payload}
}

func (e *Engine) sealToEveryoneBut(members []group.InitialMember, exclude ids.Identity, now int64, plaintext []byte) ([]DirectMessage, error) {
	dms := make([]DirectMessage, 0, len(members))
	for _, m := range members {
		if m.Member == e.myID || m.Member == exclude {
			continue
		}
		dm, err := sealDirectMessage(e.registry, m.Member, now, plaintext)
		if err != nil {
			return nil, err
		}
		dms = append(dms, dm)
	}
	return dms, nil
}
