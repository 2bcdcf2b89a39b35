package registry

import (
	"testing"

	"github.com/backkem/groupcore/pkg/crypto"
	"github.com/backkem/groupcore/pkg/ids"
	"github.com/backkem/groupcore/pkg/keybundle"
)

const testNow = int64(1_700_000_000)

func newMember(t *testing.T) (ids.Identity, crypto.Ed25519KeyPair) {
	t.Helper()
	kp, err := crypto.GenerateEd25519KeyPair()
	if err != nil {
		t.Fatalf("GenerateEd25519KeyPair failed: %v", err)
	}
	id, err := ids.IdentityFromBytes(kp.Public)
	if err != nil {
		t.Fatalf("IdentityFromBytes failed: %v", err)
	}
	return id, kp
}

func newLongTermBundle(t *testing.T, kp crypto.Ed25519KeyPair, notBefore, notAfter int64) keybundle.LongTermKeyBundle {
	t.Helper()
	xkp, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		t.Fatalf("GenerateX25519KeyPair failed: %v", err)
	}
	prekey := keybundle.PreKey{Public: xkp.Public, Lifetime: keybundle.LifetimeFromRange(notBefore, notAfter)}
	return keybundle.NewLongTermKeyBundle(kp.Public, kp.Private, prekey)
}

func TestLongTerm_PicksFurthestExpiry(t *testing.T) {
	id, kp := newMember(t)
	bundle1 := newLongTermBundle(t, kp, testNow-60, testNow+60)
	bundle2 := newLongTermBundle(t, kp, testNow-60, testNow+30)

	r := New(Config{})
	if err := r.AddLongTerm(id, bundle1, testNow); err != nil {
		t.Fatalf("AddLongTerm failed: %v", err)
	}
	if err := r.AddLongTerm(id, bundle2, testNow); err != nil {
		t.Fatalf("AddLongTerm failed: %v", err)
	}

	got, err := r.LongTerm(id, testNow)
	if err != nil {
		t.Fatalf("LongTerm failed: %v", err)
	}
	if got.PreKey.Lifetime.NotAfter != bundle1.PreKey.Lifetime.NotAfter {
		t.Errorf("LongTerm did not return the bundle with the furthest expiry")
	}
}

func TestAddLongTerm_RejectsExpiredBundle(t *testing.T) {
	id, kp := newMember(t)
	expired := newLongTermBundle(t, kp, testNow-60, testNow-30)

	r := New(Config{})
	if err := r.AddLongTerm(id, expired, testNow); err != keybundle.ErrExpired {
		t.Errorf("AddLongTerm on expired bundle = %v, want ErrExpired", err)
	}
}

func TestLongTerm_AllExpiredReturnsError(t *testing.T) {
	id, kp := newMember(t)
	valid := newLongTermBundle(t, kp, testNow-60, testNow+60)

	r := New(Config{})
	if err := r.AddLongTerm(id, valid, testNow); err != nil {
		t.Fatalf("AddLongTerm failed: %v", err)
	}

	// Advance time past the bundle's expiry: every stored bundle is now invalid.
	if _, err := r.LongTerm(id, testNow+120); err != ErrKeyBundlesExpired {
		t.Errorf("LongTerm after expiry = %v, want ErrKeyBundlesExpired", err)
	}
}

func TestLongTerm_NoBundleStored(t *testing.T) {
	id, _ := newMember(t)
	r := New(Config{})
	if _, err := r.LongTerm(id, testNow); err != ErrNoKeyBundle {
		t.Errorf("LongTerm with no bundle = %v, want ErrNoKeyBundle", err)
	}
}

func TestRegistry_GarbageCollection(t *testing.T) {
	id, kp := newMember(t)
	invalid := newLongTermBundle(t, kp, testNow-60, testNow-30)
	valid := newLongTermBundle(t, kp, testNow-60, testNow+60)

	r := New(Config{})
	// Insert the expired bundle directly, bypassing AddLongTerm's
	// expiry check, to exercise RemoveExpired's own filtering.
	r.longTerm[id] = append(r.longTerm[id], invalid)
	if err := r.AddLongTerm(id, valid, testNow); err != nil {
		t.Fatalf("AddLongTerm failed: %v", err)
	}

	if got := len(r.longTerm[id]); got != 2 {
		t.Fatalf("expected 2 stored bundles before GC, got %d", got)
	}

	r.RemoveExpired(testNow)

	if got := len(r.longTerm[id]); got != 1 {
		t.Fatalf("expected 1 stored bundle after GC, got %d", got)
	}

	got, err := r.LongTerm(id, testNow)
	if err != nil {
		t.Fatalf("LongTerm failed: %v", err)
	}
	if got.PreKey.Lifetime.NotAfter != valid.PreKey.Lifetime.NotAfter {
		t.Error("RemoveExpired kept the wrong bundle")
	}
}

func TestTakeOneTime_PopsMostRecentlyAdded(t *testing.T) {
	id, kp := newMember(t)
	r := New(Config{})

	var bundles []keybundle.OneTimeKeyBundle
	for i := 0; i < 3; i++ {
		xkp, err := crypto.GenerateX25519KeyPair()
		if err != nil {
			t.Fatalf("GenerateX25519KeyPair failed: %v", err)
		}
		prekey := keybundle.PreKey{Public: xkp.Public, Lifetime: keybundle.LifetimeFromRange(testNow-60, testNow+60)}
		bundle := keybundle.NewOneTimeKeyBundle(kp.Public, kp.Private, prekey)
		bundles = append(bundles, bundle)
		if err := r.AddOneTime(id, bundle, testNow); err != nil {
			t.Fatalf("AddOneTime failed: %v", err)
		}
	}

	got, ok := r.TakeOneTime(id)
	if !ok {
		t.Fatal("expected a one-time bundle")
	}
	if got.PreKey.Public != bundles[len(bundles)-1].PreKey.Public {
		t.Error("TakeOneTime did not return the most recently added bundle")
	}
}

func TestTakeOneTime_EmptyReturnsFalse(t *testing.T) {
	id, _ := newMember(t)
	r := New(Config{})
	if _, ok := r.TakeOneTime(id); ok {
		t.Error("TakeOneTime on empty registry should return false")
	}
}

func TestAddLongTerm_IdentityMismatchRejected(t *testing.T) {
	id, kp := newMember(t)
	_, otherKp := newMember(t)

	r := New(Config{})
	bundle := newLongTermBundle(t, kp, testNow-60, testNow+60)
	if err := r.AddLongTerm(id, bundle, testNow); err != nil {
		t.Fatalf("AddLongTerm failed: %v", err)
	}

	mismatched := newLongTermBundle(t, otherKp, testNow-60, testNow+60)
	if err := r.AddLongTerm(id, mismatched, testNow); err != ErrIdentityMismatch {
		t.Errorf("AddLongTerm with mismatched identity = %v, want ErrIdentityMismatch", err)
	}
}
