// Package wire defines the bit-exact CBOR encoding of every message
// type that crosses the network: control messages, direct messages,
// key bundles, and their constituent parts. It uses
// github.com/fxamacker/cbor/v2's struct-tag-driven codec with its
// default encoding options, not its canonical mode: every wire type is
// a struct whose fields are written in declaration order, so a given
// value always encodes to the same bytes.
package wire
