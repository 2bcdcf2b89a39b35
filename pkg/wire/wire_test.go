package wire

import (
	"bytes"
	"testing"

	"github.com/backkem/groupcore/pkg/access"
	"github.com/backkem/groupcore/pkg/crypto"
	"github.com/backkem/groupcore/pkg/dcgka"
	"github.com/backkem/groupcore/pkg/group"
	"github.com/backkem/groupcore/pkg/ids"
	"github.com/backkem/groupcore/pkg/keybundle"
	"github.com/backkem/groupcore/pkg/secretbundle"
)

func mkIdentity(t *testing.T, b byte) ids.Identity {
	t.Helper()
	buf := make([]byte, ids.IdentitySize)
	for i := range buf {
		buf[i] = b
	}
	id, err := ids.IdentityFromBytes(buf)
	if err != nil {
		t.Fatalf("IdentityFromBytes: %v", err)
	}
	return id
}

func mkOperationID(t *testing.T, b byte) ids.OperationID {
	t.Helper()
	buf := make([]byte, ids.OperationIDSize)
	for i := range buf {
		buf[i] = b
	}
	id, err := ids.OperationIDFromBytes(buf)
	if err != nil {
		t.Fatalf("OperationIDFromBytes: %v", err)
	}
	return id
}

func TestControlMessage_RoundTrip_Create(t *testing.T) {
	alice := mkIdentity(t, 1)
	bob := mkIdentity(t, 2)

	msg := group.NewActionMessage(group.GroupAction{
		Kind: group.ActionCreate,
		InitialMembers: []group.InitialMember{
			{Member: alice, Access: access.Manage},
			{Member: bob, Access: access.Write},
		},
	})

	data, err := EncodeControlMessage(msg)
	if err != nil {
		t.Fatalf("EncodeControlMessage: %v", err)
	}
	decoded, err := DecodeControlMessage(data)
	if err != nil {
		t.Fatalf("DecodeControlMessage: %v", err)
	}

	if decoded.Action == nil || !decoded.Action.IsCreate() {
		t.Fatalf("decoded message is not a Create: %+v", decoded)
	}
	if len(decoded.Action.InitialMembers) != 2 {
		t.Fatalf("expected 2 initial members, got %d", len(decoded.Action.InitialMembers))
	}
	if decoded.Action.InitialMembers[0].Member != alice || decoded.Action.InitialMembers[0].Access != access.Manage {
		t.Errorf("initial member 0 mismatch: %+v", decoded.Action.InitialMembers[0])
	}
	if decoded.Action.InitialMembers[1].Member != bob || decoded.Action.InitialMembers[1].Access != access.Write {
		t.Errorf("initial member 1 mismatch: %+v", decoded.Action.InitialMembers[1])
	}
}

func TestControlMessage_RoundTrip_AddRemovePromoteDemote(t *testing.T) {
	bob := mkIdentity(t, 2)

	cases := []group.GroupAction{
		{Kind: group.ActionAdd, Member: bob, Access: access.Write},
		{Kind: group.ActionRemove, Member: bob},
		{Kind: group.ActionPromote, Member: bob, Access: access.Manage},
		{Kind: group.ActionDemote, Member: bob, Access: access.Read},
	}

	for _, action := range cases {
		msg := group.NewActionMessage(action)
		data, err := EncodeControlMessage(msg)
		if err != nil {
			t.Fatalf("EncodeControlMessage(%v): %v", action.Kind, err)
		}
		decoded, err := DecodeControlMessage(data)
		if err != nil {
			t.Fatalf("DecodeControlMessage(%v): %v", action.Kind, err)
		}
		if decoded.Action == nil {
			t.Fatalf("%v: decoded as non-action message", action.Kind)
		}
		if decoded.Action.Kind != action.Kind || decoded.Action.Member != action.Member {
			t.Errorf("%v: decoded action mismatch: %+v", action.Kind, decoded.Action)
		}
		if action.Kind != group.ActionRemove && decoded.Action.Access != action.Access {
			t.Errorf("%v: decoded access mismatch: got %v want %v", action.Kind, decoded.Action.Access, action.Access)
		}
	}
}

func TestControlMessage_RoundTrip_Revoke(t *testing.T) {
	target := mkOperationID(t, 0x42)
	msg := group.NewRevokeMessage(target)

	data, err := EncodeControlMessage(msg)
	if err != nil {
		t.Fatalf("EncodeControlMessage: %v", err)
	}
	decoded, err := DecodeControlMessage(data)
	if err != nil {
		t.Fatalf("DecodeControlMessage: %v", err)
	}
	if decoded.Revoke == nil || *decoded.Revoke != target {
		t.Fatalf("decoded revoke mismatch: %+v", decoded)
	}
}

func TestGroupSecret_RoundTrip(t *testing.T) {
	key, err := crypto.RandomSecret()
	if err != nil {
		t.Fatalf("RandomSecret: %v", err)
	}
	secret := secretbundle.NewGroupSecret(key, 12345)

	data, err := EncodeGroupSecret(secret)
	if err != nil {
		t.Fatalf("EncodeGroupSecret: %v", err)
	}
	decoded, err := DecodeGroupSecret(data)
	if err != nil {
		t.Fatalf("DecodeGroupSecret: %v", err)
	}
	if decoded != secret {
		t.Fatalf("round-trip mismatch: got %+v want %+v", decoded, secret)
	}
}

func TestSecretBundle_RoundTrip(t *testing.T) {
	var secrets []secretbundle.GroupSecret
	for i := 0; i < 3; i++ {
		key, err := crypto.RandomSecret()
		if err != nil {
			t.Fatalf("RandomSecret: %v", err)
		}
		secrets = append(secrets, secretbundle.NewGroupSecret(key, int64(100+i)))
	}
	bundle := secretbundle.FromSecrets(secrets)

	data, err := EncodeSecretBundle(bundle)
	if err != nil {
		t.Fatalf("EncodeSecretBundle: %v", err)
	}
	decoded, err := DecodeSecretBundle(data)
	if err != nil {
		t.Fatalf("DecodeSecretBundle: %v", err)
	}
	if decoded.Len() != bundle.Len() {
		t.Fatalf("expected %d secrets, got %d", bundle.Len(), decoded.Len())
	}
	for _, s := range secrets {
		if !decoded.Contains(s.ID()) {
			t.Errorf("decoded bundle missing secret %v", s.ID())
		}
	}
}

func TestLongTermKeyBundle_RoundTrip(t *testing.T) {
	identity, err := crypto.GenerateEd25519KeyPair()
	if err != nil {
		t.Fatalf("GenerateEd25519KeyPair: %v", err)
	}
	longTerm, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		t.Fatalf("GenerateX25519KeyPair: %v", err)
	}
	preKey := keybundle.PreKey{Public: longTerm.Public, Lifetime: keybundle.LifetimeFromRange(100, 200)}
	bundle := keybundle.NewLongTermKeyBundle(identity.Public, identity.Private, preKey)

	data, err := EncodeLongTermKeyBundle(bundle)
	if err != nil {
		t.Fatalf("EncodeLongTermKeyBundle: %v", err)
	}
	decoded, err := DecodeLongTermKeyBundle(data)
	if err != nil {
		t.Fatalf("DecodeLongTermKeyBundle: %v", err)
	}
	if !bytes.Equal(decoded.IdentityKey, bundle.IdentityKey) {
		t.Errorf("identity key mismatch")
	}
	if decoded.PreKey.Public != bundle.PreKey.Public {
		t.Errorf("prekey public mismatch")
	}
	if decoded.PreKey.Lifetime != bundle.PreKey.Lifetime {
		t.Errorf("lifetime mismatch: got %+v want %+v", decoded.PreKey.Lifetime, bundle.PreKey.Lifetime)
	}
	if !bytes.Equal(decoded.Signature, bundle.Signature) {
		t.Errorf("signature mismatch")
	}
	if err := decoded.Verify(150); err != nil {
		t.Errorf("decoded bundle failed to verify: %v", err)
	}
}

func TestOneTimeKeyBundle_RoundTrip(t *testing.T) {
	identity, err := crypto.GenerateEd25519KeyPair()
	if err != nil {
		t.Fatalf("GenerateEd25519KeyPair: %v", err)
	}
	oneTime, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		t.Fatalf("GenerateX25519KeyPair: %v", err)
	}
	preKey := keybundle.PreKey{Public: oneTime.Public, Lifetime: keybundle.LifetimeFromRange(100, 200)}
	bundle := keybundle.NewOneTimeKeyBundle(identity.Public, identity.Private, preKey)

	data, err := EncodeOneTimeKeyBundle(bundle)
	if err != nil {
		t.Fatalf("EncodeOneTimeKeyBundle: %v", err)
	}
	decoded, err := DecodeOneTimeKeyBundle(data)
	if err != nil {
		t.Fatalf("DecodeOneTimeKeyBundle: %v", err)
	}
	if err := decoded.Verify(150); err != nil {
		t.Errorf("decoded bundle failed to verify: %v", err)
	}
}

func TestDirectMessage_RoundTrip(t *testing.T) {
	recipient := mkIdentity(t, 3)
	ephemeral, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		t.Fatalf("GenerateX25519KeyPair: %v", err)
	}
	oneTimePub := [crypto.X25519KeySize]byte{9, 9, 9}
	var nonce [crypto.AEADNonceSize]byte
	copy(nonce[:], []byte("0123456789abcdef01234567"))

	dm := dcgka.DirectMessage{
		Recipient:         recipient,
		EphemeralPublic:   ephemeral.Public,
		OneTimePreKeyUsed: &oneTimePub,
		Nonce:             nonce,
		Ciphertext:        []byte("sealed-bytes"),
	}

	data, err := EncodeDirectMessage(dm)
	if err != nil {
		t.Fatalf("EncodeDirectMessage: %v", err)
	}
	decoded, err := DecodeDirectMessage(data)
	if err != nil {
		t.Fatalf("DecodeDirectMessage: %v", err)
	}
	if decoded.Recipient != dm.Recipient {
		t.Errorf("recipient mismatch")
	}
	if decoded.EphemeralPublic != dm.EphemeralPublic {
		t.Errorf("ephemeral public mismatch")
	}
	if decoded.OneTimePreKeyUsed == nil || *decoded.OneTimePreKeyUsed != *dm.OneTimePreKeyUsed {
		t.Errorf("one-time pre-key mismatch")
	}
	if decoded.Nonce != dm.Nonce {
		t.Errorf("nonce mismatch")
	}
	if !bytes.Equal(decoded.Ciphertext, dm.Ciphertext) {
		t.Errorf("ciphertext mismatch")
	}
}

func TestDirectMessage_RoundTrip_NoOneTimeKey(t *testing.T) {
	recipient := mkIdentity(t, 4)
	ephemeral, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		t.Fatalf("GenerateX25519KeyPair: %v", err)
	}
	var nonce [crypto.AEADNonceSize]byte
	copy(nonce[:], []byte("abcdefghijklmnopqrstuvwx"))

	dm := dcgka.DirectMessage{
		Recipient:       recipient,
		EphemeralPublic: ephemeral.Public,
		Nonce:           nonce,
		Ciphertext:      []byte("more-sealed-bytes"),
	}

	data, err := EncodeDirectMessage(dm)
	if err != nil {
		t.Fatalf("EncodeDirectMessage: %v", err)
	}
	decoded, err := DecodeDirectMessage(data)
	if err != nil {
		t.Fatalf("DecodeDirectMessage: %v", err)
	}
	if decoded.OneTimePreKeyUsed != nil {
		t.Errorf("expected no one-time pre-key, got %v", decoded.OneTimePreKeyUsed)
	}
}

func TestMessageID_RoundTrip(t *testing.T) {
	id := ids.NewMessageID([]byte("some encoded message"))

	data, err := EncodeMessageID(id)
	if err != nil {
		t.Fatalf("EncodeMessageID: %v", err)
	}
	decoded, err := DecodeMessageID(data)
	if err != nil {
		t.Fatalf("DecodeMessageID: %v", err)
	}
	if decoded != id {
		t.Fatalf("round-trip mismatch: got %v want %v", decoded, id)
	}
}
