package wire

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/backkem/groupcore/pkg/crypto"
	"github.com/backkem/groupcore/pkg/dcgka"
	"github.com/backkem/groupcore/pkg/ids"
)

// WireDirectMessage is the CBOR encoding of a dcgka.DirectMessage:
// recipient, a header carrying the X3DH handshake's ephemeral material,
// and the AEAD ciphertext.
type WireDirectMessage struct {
	Recipient  []byte `cbor:"recipient"`
	Header     []byte `cbor:"header"`
	Ciphertext []byte `cbor:"ciphertext"`
}

// WireMessageID is the CBOR encoding of a content-addressed message id.
type WireMessageID struct {
	ID []byte `cbor:"id"`
}

const (
	headerOneTimeAbsent  = 0
	headerOneTimePresent = 1
)

// EncodeDirectMessage returns the canonical CBOR encoding of dm. The
// handshake header packs the sender's ephemeral public key, an
// absent/present flag for the one-time pre-key reference, the
// referenced key itself when present, and the AEAD nonce, in that
// order.
func EncodeDirectMessage(dm dcgka.DirectMessage) ([]byte, error) {
	header := make([]byte, 0, crypto.X25519KeySize+1+crypto.X25519KeySize+crypto.AEADNonceSize)
	header = append(header, dm.EphemeralPublic[:]...)
	if dm.OneTimePreKeyUsed != nil {
		header = append(header, headerOneTimePresent)
		header = append(header, dm.OneTimePreKeyUsed[:]...)
	} else {
		header = append(header, headerOneTimeAbsent)
	}
	header = append(header, dm.Nonce[:]...)

	wired := WireDirectMessage{
		Recipient:  dm.Recipient.Bytes(),
		Header:     header,
		Ciphertext: dm.Ciphertext,
	}
	return cbor.Marshal(wired)
}

// DecodeDirectMessage parses the CBOR encoding produced by
// EncodeDirectMessage.
func DecodeDirectMessage(data []byte) (dcgka.DirectMessage, error) {
	var wired WireDirectMessage
	if err := cbor.Unmarshal(data, &wired); err != nil {
		return dcgka.DirectMessage{}, err
	}

	recipient, err := ids.IdentityFromBytes(wired.Recipient)
	if err != nil {
		return dcgka.DirectMessage{}, err
	}

	header := wired.Header
	if len(header) < crypto.X25519KeySize+1 {
		return dcgka.DirectMessage{}, ErrMalformedDirectMessage
	}
	var ephemeral [crypto.X25519KeySize]byte
	copy(ephemeral[:], header[:crypto.X25519KeySize])
	header = header[crypto.X25519KeySize:]

	flag := header[0]
	header = header[1:]

	var oneTime *[crypto.X25519KeySize]byte
	if flag == headerOneTimePresent {
		if len(header) < crypto.X25519KeySize {
			return dcgka.DirectMessage{}, ErrMalformedDirectMessage
		}
		var pub [crypto.X25519KeySize]byte
		copy(pub[:], header[:crypto.X25519KeySize])
		oneTime = &pub
		header = header[crypto.X25519KeySize:]
	}

	if len(header) != crypto.AEADNonceSize {
		return dcgka.DirectMessage{}, ErrMalformedDirectMessage
	}
	var nonce [crypto.AEADNonceSize]byte
	copy(nonce[:], header)

	return dcgka.DirectMessage{
		Recipient:         recipient,
		EphemeralPublic:   ephemeral,
		OneTimePreKeyUsed: oneTime,
		Nonce:             nonce,
		Ciphertext:        wired.Ciphertext,
	}, nil
}

// EncodeMessageID returns the canonical CBOR encoding of id.
func EncodeMessageID(id ids.MessageID) ([]byte, error) {
	return cbor.Marshal(WireMessageID{ID: id.Bytes()})
}

// DecodeMessageID parses the CBOR encoding produced by EncodeMessageID.
func DecodeMessageID(data []byte) (ids.MessageID, error) {
	var wired WireMessageID
	if err := cbor.Unmarshal(data, &wired); err != nil {
		return ids.MessageID{}, err
	}
	return ids.MessageIDFromBytes(wired.ID)
}
