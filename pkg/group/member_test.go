package group

import (
	"testing"

	"github.com/backkem/groupcore/pkg/access"
	"github.com/backkem/groupcore/pkg/ids"
)

func mkIdentity(t *testing.T, b byte) ids.Identity {
	t.Helper()
	buf := make([]byte, ids.IdentitySize)
	for i := range buf {
		buf[i] = b
	}
	id, err := ids.IdentityFromBytes(buf)
	if err != nil {
		t.Fatalf("IdentityFromBytes failed: %v", err)
	}
	return id
}

func TestMerge_Commutative(t *testing.T) {
	alice := mkIdentity(t, 1)
	bob := mkIdentity(t, 2)
	carol := mkIdentity(t, 3)

	a := MembersState{Members: map[ids.Identity]MemberState{
		alice: {Member: alice, MemberCounter: 1, Access: access.Manage},
		bob:   {Member: bob, MemberCounter: 1, Access: access.Read},
	}}
	b := MembersState{Members: map[ids.Identity]MemberState{
		bob:   {Member: bob, MemberCounter: 2, Access: access.Read}, // bob removed concurrently
		carol: {Member: carol, MemberCounter: 1, Access: access.Write},
	}}

	ab := Merge(a, b)
	ba := Merge(b, a)

	for _, id := range []ids.Identity{alice, bob, carol} {
		mAB, okAB := ab.Get(id)
		mBA, okBA := ba.Get(id)
		if okAB != okBA || mAB != mBA {
			t.Errorf("merge not commutative for %v: Merge(a,b)=%+v Merge(b,a)=%+v", id, mAB, mBA)
		}
	}
}

func TestMerge_Associative(t *testing.T) {
	alice := mkIdentity(t, 1)
	bob := mkIdentity(t, 2)
	carol := mkIdentity(t, 3)

	a := MembersState{Members: map[ids.Identity]MemberState{
		alice: {Member: alice, MemberCounter: 1, Access: access.Manage},
	}}
	b := MembersState{Members: map[ids.Identity]MemberState{
		bob: {Member: bob, MemberCounter: 1, Access: access.Write},
	}}
	c := MembersState{Members: map[ids.Identity]MemberState{
		alice: {Member: alice, MemberCounter: 2, Access: access.Manage}, // concurrent remove of alice
		carol: {Member: carol, MemberCounter: 1, Access: access.Read},
	}}

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(b, c))

	for _, id := range []ids.Identity{alice, bob, carol} {
		mLeft, okLeft := left.Get(id)
		mRight, okRight := right.Get(id)
		if okLeft != okRight || mLeft != mRight {
			t.Errorf("merge not associative for %v: left=%+v right=%+v", id, mLeft, mRight)
		}
	}

	aliceState, _ := left.Get(alice)
	if aliceState.IsMember() {
		t.Error("expected alice to be removed after merging in the higher counter")
	}
}

func TestComputeNextState_AddRequiresManage(t *testing.T) {
	alice := mkIdentity(t, 1)
	bob := mkIdentity(t, 2)
	carol := mkIdentity(t, 3)

	y := MembersState{Members: map[ids.Identity]MemberState{
		alice: {Member: alice, MemberCounter: 1, Access: access.Read},
	}}

	_, err := computeNextState(y, alice, GroupAction{Kind: ActionAdd, Member: bob, Access: access.Read})
	if err != ErrNotAuthorized {
		t.Errorf("Add by a Read-only member = %v, want ErrNotAuthorized", err)
	}

	y = MembersState{Members: map[ids.Identity]MemberState{
		alice: {Member: alice, MemberCounter: 1, Access: access.Manage},
	}}
	next, err := computeNextState(y, alice, GroupAction{Kind: ActionAdd, Member: carol, Access: access.Write})
	if err != nil {
		t.Fatalf("Add by a Manage member failed: %v", err)
	}
	carolState, ok := next.Get(carol)
	if !ok || !carolState.IsMember() || carolState.Access != access.Write {
		t.Errorf("expected carol added with Write access, got %+v (ok=%v)", carolState, ok)
	}
}

func TestComputeNextState_RemoveUnknownMember(t *testing.T) {
	alice := mkIdentity(t, 1)
	bob := mkIdentity(t, 2)

	y := MembersState{Members: map[ids.Identity]MemberState{
		alice: {Member: alice, MemberCounter: 1, Access: access.Manage},
	}}

	_, err := computeNextState(y, alice, GroupAction{Kind: ActionRemove, Member: bob})
	if err != ErrUnknownMember {
		t.Errorf("Remove of unknown member = %v, want ErrUnknownMember", err)
	}
}
