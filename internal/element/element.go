// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package element implements the commitment/fingerprint layer: the
// typed intermediate values a tap-leaf script commits to, and their
// compressed, hashed, or nibble-encoded wire representations.
package element

import (
	"errors"
	"fmt"

	"github.com/zeebo/blake3"
)

// ErrLengthMismatch is returned instead of panicking when a byte slice
// handed to Deserialize does not match any known encoding length.
var ErrLengthMismatch = errors.New("element: length mismatch")

// ElementType tags the kind of value an intermediate chunk output
// carries, mirroring the taxonomy of elements.rs's DataType/ElementType
// pair, collapsed into one Go enum since Go has no separate
// "representation vs. role" distinction worth keeping.
type ElementType int

const (
	// TypeU256 is a single 256-bit field element (Fq or Fr), committed
	// to the script VM in full, uncompressed form.
	TypeU256 ElementType = iota
	// TypeFq6 is an Fq6 tower element (3 Fq2 limbs), committed by its
	// 20-byte BLAKE3 fingerprint rather than in full.
	TypeFq6
	// TypeG1 is a G1 affine point, committed in full (two Fq limbs).
	TypeG1
	// TypeG2Eval is the aggregate {T, a+b, ab, p2le, residueHint}
	// produced by one pairing loop step, always committed by hash.
	TypeG2Eval
)

// NumberOfLimbsOfHashingPreimage returns how many 32-byte (or 4-bit
// nibble, see Nibbles) limbs feed the BLAKE3 preimage for a value of
// this type, mirroring
// elements.rs's number_of_limbs_of_hashing_preimage.
func (t ElementType) NumberOfLimbsOfHashingPreimage() int {
	switch t {
	case TypeU256:
		return 1
	case TypeFq6:
		return 6
	case TypeG1:
		return 2
	case TypeG2Eval:
		return 1 // hashed as the concatenation of HashT and HashLE, see ElemG2Eval
	default:
		return 0
	}
}

// DataType distinguishes how a CompressedStateObject is laid out on
// the wire: as a 20-byte BLAKE3-160 fingerprint, or as a raw 32-byte
// field element.
type DataType int

const (
	// DataTypeHash marks a 20-byte fingerprint payload.
	DataTypeHash DataType = iota
	// DataTypeU256 marks a raw 32-byte field-element payload.
	DataTypeU256
)

const (
	hashLen = 20
	u256Len = 32
)

// CompressedStateObject is the wire commitment a tap leaf's witness
// carries: either a 20-byte hash or a 32-byte field element, tagged by
// which one it is. This mirrors
// elements.rs's CompressedStateObject enum.
type CompressedStateObject struct {
	Kind DataType
	Hash [hashLen]byte
	U256 [u256Len]byte
}

// NewHash builds a hash-kind commitment.
func NewHash(h [hashLen]byte) CompressedStateObject {
	return CompressedStateObject{Kind: DataTypeHash, Hash: h}
}

// NewU256 builds a field-element-kind commitment.
func NewU256(v [u256Len]byte) CompressedStateObject {
	return CompressedStateObject{Kind: DataTypeU256, U256: v}
}

// Serialize lays the commitment out as the original Rust
// serialize_to_byte_array does: the raw payload bytes, with no length
// prefix or type tag (the tag is carried out-of-band by the caller,
// exactly as in the original chunk-assertion layout).
func (c CompressedStateObject) Serialize() []byte {
	if c.Kind == DataTypeHash {
		out := make([]byte, hashLen)
		copy(out, c.Hash[:])
		return out
	}
	out := make([]byte, u256Len)
	copy(out, c.U256[:])
	return out
}

// Deserialize reconstructs a CompressedStateObject from its raw
// payload bytes, inferring the kind from the length. The original
// Rust deserialize_from_byte_array used assert_eq! on the length,
// panicking on malformed input; this redesign returns
// ErrLengthMismatch instead, per the source's own flagged design note.
func Deserialize(b []byte) (CompressedStateObject, error) {
	switch len(b) {
	case hashLen:
		var h [hashLen]byte
		copy(h[:], b)
		return NewHash(h), nil
	case u256Len:
		var v [u256Len]byte
		copy(v[:], b)
		return NewU256(v), nil
	default:
		return CompressedStateObject{}, fmt.Errorf("%w: got %d bytes, want %d or %d", ErrLengthMismatch, len(b), hashLen, u256Len)
	}
}

// AsOnStackHint returns the ordered witness limb(s) a tap-leaf script
// expects for a committed value, spec.md §4.1/§9's
// as_on_stack_hint(value, type) -> [limb]: for both DataType variants
// this module carries (a 20-byte hash or a 32-byte field element) the
// witness is the single raw payload Serialize already produces — named
// here to match the operation validate_assertions shares between the
// compiler and the verifier.
func (c CompressedStateObject) AsOnStackHint() [][]byte {
	return [][]byte{c.Serialize()}
}

// Nibbles splits b into big-endian 4-bit nibbles, one per output byte
// (high nibble first), the encoding the hash-chain one-time signature
// in internal/ots signs over instead of raw bytes.
func Nibbles(b []byte) []byte {
	out := make([]byte, 0, len(b)*2)
	for _, v := range b {
		out = append(out, v>>4, v&0x0f)
	}
	return out
}

// NibblesToBytes is the inverse of Nibbles. It returns ErrLengthMismatch
// if the input isn't an even number of nibbles.
func NibblesToBytes(nibbles []byte) ([]byte, error) {
	if len(nibbles)%2 != 0 {
		return nil, fmt.Errorf("%w: odd nibble count %d", ErrLengthMismatch, len(nibbles))
	}
	out := make([]byte, len(nibbles)/2)
	for i := range out {
		out[i] = nibbles[2*i]<<4 | (nibbles[2*i+1] & 0x0f)
	}
	return out, nil
}

// Fingerprint160 returns the low 20 bytes of the BLAKE3-256 digest of
// preimage, the BLAKE3-160 fingerprint used throughout the chunk
// algebra to compress an Fq6/Fq12-sized value to a single hash
// commitment.
func Fingerprint160(preimage []byte) [hashLen]byte {
	full := blake3.Sum256(preimage)
	var out [hashLen]byte
	copy(out[:], full[len(full)-hashLen:])
	return out
}
