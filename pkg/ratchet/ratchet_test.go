package ratchet

import "testing"

func testSecret(t *testing.T) [32]byte {
	t.Helper()
	var secret [32]byte
	for i := range secret {
		secret[i] = byte(i)
	}
	return secret
}

func TestRatchetForward(t *testing.T) {
	secret := testSecret(t)

	r := Init(secret)
	r, generation, secret0, err := RatchetForward(r)
	if err != nil {
		t.Fatalf("RatchetForward failed: %v", err)
	}
	if generation != 0 {
		t.Errorf("generation = %d, want 0", generation)
	}
	if r.generation != 1 {
		t.Errorf("r.generation = %d, want 1", r.generation)
	}

	r, generation, secret1, err := RatchetForward(r)
	if err != nil {
		t.Fatalf("RatchetForward failed: %v", err)
	}
	if generation != 1 {
		t.Errorf("generation = %d, want 1", generation)
	}
	if r.generation != 2 {
		t.Errorf("r.generation = %d, want 2", r.generation)
	}

	if secret0 == secret1 {
		t.Error("ratchet secrets should not match across generations")
	}
}

func TestForwardSecrecy(t *testing.T) {
	secret := testSecret(t)

	const oooTolerance = 4
	const maxForward = 100

	r := InitDecryption(secret)

	r, got, err := SecretForDecryption(r, 0, maxForward, oooTolerance)
	if err != nil {
		t.Fatalf("SecretForDecryption failed: %v", err)
	}
	if r.head.generation != 1 {
		t.Errorf("head generation = %d, want 1", r.head.generation)
	}
	if r.head.secret == got.Key {
		t.Error("head secret should not equal the derived message key")
	}
	for _, entry := range r.pastSecrets {
		if entry != nil {
			t.Error("no secrets should have been kept")
		}
	}

	if _, _, err := SecretForDecryption(r, 0, maxForward, oooTolerance); err != ErrSecretReuse {
		t.Errorf("re-fetching generation 0 = %v, want ErrSecretReuse", err)
	}

	const jump = 10
	r, _, err = SecretForDecryption(r, jump, maxForward, oooTolerance)
	if err != nil {
		t.Fatalf("SecretForDecryption failed: %v", err)
	}

	for generation := Generation(jump - oooTolerance + 1); generation < jump; generation++ {
		next, _, err := SecretForDecryption(r, generation, maxForward, oooTolerance)
		if err != nil {
			t.Fatalf("SecretForDecryption(%d) failed: %v", generation, err)
		}

		if _, _, err := SecretForDecryption(next, generation, maxForward, oooTolerance); err != ErrSecretReuse {
			t.Errorf("re-fetching generation %d = %v, want ErrSecretReuse", generation, err)
		}

		r = next
	}

	for _, entry := range r.pastSecrets {
		if entry != nil {
			t.Error("no secrets should remain after all were consumed")
		}
	}
}

func TestOutOfOrder(t *testing.T) {
	secret := testSecret(t)

	const maxForward = 3
	const oooTolerance = 3

	alice := Init(secret)
	bob := InitDecryption(secret)

	alice, _, aliceSecret0, err := RatchetForward(alice)
	if err != nil {
		t.Fatalf("RatchetForward failed: %v", err)
	}
	alice, _, _, err = RatchetForward(alice)
	if err != nil {
		t.Fatalf("RatchetForward failed: %v", err)
	}
	alice, _, aliceSecret2, err := RatchetForward(alice)
	if err != nil {
		t.Fatalf("RatchetForward failed: %v", err)
	}
	alice, _, aliceSecret3, err := RatchetForward(alice)
	if err != nil {
		t.Fatalf("RatchetForward failed: %v", err)
	}
	alice, _, aliceSecret4, err := RatchetForward(alice)
	if err != nil {
		t.Fatalf("RatchetForward failed: %v", err)
	}
	if alice.generation != 5 {
		t.Fatalf("alice.generation = %d, want 5", alice.generation)
	}

	bob, bobSecret0, err := SecretForDecryption(bob, 0, maxForward, oooTolerance)
	if err != nil {
		t.Fatalf("SecretForDecryption failed: %v", err)
	}
	if bobSecret0 != aliceSecret0 {
		t.Error("bob's secret for generation 0 should match alice's")
	}

	bob, bobSecret4, err := SecretForDecryption(bob, 4, maxForward, oooTolerance)
	if err != nil {
		t.Fatalf("SecretForDecryption failed: %v", err)
	}
	if bobSecret4 != aliceSecret4 {
		t.Error("bob's secret for generation 4 should match alice's")
	}
	if bob.head.generation != 5 {
		t.Errorf("bob.head.generation = %d, want 5", bob.head.generation)
	}

	bob, bobSecret3, err := SecretForDecryption(bob, 3, maxForward, oooTolerance)
	if err != nil {
		t.Fatalf("SecretForDecryption failed: %v", err)
	}
	if bobSecret3 != aliceSecret3 {
		t.Error("bob's secret for generation 3 should match alice's")
	}

	bob, bobSecret2, err := SecretForDecryption(bob, 2, maxForward, oooTolerance)
	if err != nil {
		t.Fatalf("SecretForDecryption failed: %v", err)
	}
	if bobSecret2 != aliceSecret2 {
		t.Error("bob's secret for generation 2 should match alice's")
	}

	if _, _, err := SecretForDecryption(bob, 1, maxForward, oooTolerance); err != ErrTooDistantInThePast {
		t.Errorf("generation 1 outside the tolerance window = %v, want ErrTooDistantInThePast", err)
	}

	futureGen := bob.head.generation + maxForward + 1
	if _, _, err := SecretForDecryption(bob, futureGen, maxForward, oooTolerance); err != ErrTooDistantInTheFuture {
		t.Errorf("generation %d outside the forward window = %v, want ErrTooDistantInTheFuture", futureGen, err)
	}
}
