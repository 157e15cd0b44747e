// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package groth16chunk is the public surface of this module: compile a
// BN254 Groth16 verifying key into tap-leaf scripts, generate and sign
// a prover's per-leaf assertions, and validate a signed assertion set
// against the compiled leaves, returning the first disprovable leaf
// (if any). This mirrors
// original_source/bitvm/src/groth16/g16.rs's public function set
// one-for-one (spec.md §6.1).
package groth16chunk

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/logical-mechanism/groth16chunk/internal/assert"
	"github.com/logical-mechanism/groth16chunk/internal/compile"
	"github.com/logical-mechanism/groth16chunk/internal/element"
	"github.com/logical-mechanism/groth16chunk/internal/fields"
	"github.com/logical-mechanism/groth16chunk/internal/ots"
)

// VerifyingKey, Proof, and CompiledVerifier re-export their
// internal/compile counterparts so callers of this package never need
// to import internal packages directly.
type (
	VerifyingKey     = compile.VerifyingKey
	Proof            = compile.Proof
	CompiledVerifier = compile.CompiledVerifier
	Leaf             = assert.Leaf
	Assertions       = assert.Assertions
	SignedAssertions = assert.SignedAssertions
	Fault            = assert.Fault
	KeySet           = ots.KeySet
)

// NewKeySet returns an empty one-time-signature key set, to be shared
// between GenerateProofAssertions (prover side) and ValidateAssertions
// (verifier side) the way original_source/src/chunker/assigner.rs's
// BCAssigner implementations share key assignment order.
func NewKeySet() *KeySet { return ots.NewKeySet() }

// CompileVerifier compiles vk (and the given public inputs, needed
// only to fold vk_x once up front) into an ordered list of tap-leaf
// scripts. logger may be zerolog.Nop() when the caller doesn't want
// compiler diagnostics.
func CompileVerifier(ctx context.Context, vk VerifyingKey, publicInputs []fields.G1ScalarLike, logger zerolog.Logger) (CompiledVerifier, error) {
	return compile.CompileVerifier(ctx, vk, publicInputs, logger)
}

// GenerateProofAssertions signs every entry of the assertion set a,
// ready to be persisted and later checked by ValidateAssertions. It
// reads no proof or verifying key: the caller supplies the asserted
// values themselves.
func GenerateProofAssertions(a Assertions, ks *KeySet, idFor func(kind string, index int) string) (SignedAssertions, error) {
	return assert.GenerateProofAssertions(a, ks, idFor)
}

// VerifySignedAssertions verifies every one-time signature in sa, then
// executes every compiled leaf against the witness witnessFor
// supplies, returning the first Fault found, or nil if every leaf
// passes — the "is this proof disprovable" check a challenger runs,
// named to match spec.md §6.1's verify_signed_assertions exactly.
func VerifySignedAssertions(
	sa SignedAssertions,
	ks *KeySet,
	idFor func(kind string, index int) string,
	leaves []Leaf,
	witnessFor func(leafIndex int) [][]byte,
) (*Fault, error) {
	return assert.ValidateAssertions(sa, ks, idFor, leaves, witnessFor)
}

// GenerateDisproveScripts returns the single witness/script pair a
// challenger posts to win a disprove, given a Fault ValidateAssertions
// already located.
func GenerateDisproveScripts(leaves []Leaf, fault Fault) (Leaf, [][]byte, error) {
	return assert.GenerateDisproveScripts(leaves, fault)
}

// DefaultIDFor is the canonical kind/index-to-id scheme this package
// uses when callers don't need a custom one: "<kind>-<index>", stable
// across compile, assert, and verify calls for the same proof.
func DefaultIDFor(kind string, index int) string {
	return fmt.Sprintf("%s-%d", kind, index)
}

// WitnessForAssertions builds the witnessFor callback
// VerifySignedAssertions needs straight from a signed assertion set,
// re-deriving each leaf's witness from the bytes a prover committed to
// (spec.md §4.5/§6.1).
func WitnessForAssertions(sa SignedAssertions) func(leafIndex int) [][]byte {
	return assert.WitnessForAssertions(sa)
}

// AssertionsFromValues builds an Assertions from raw public inputs,
// Fq limbs, and hash commitments, fingerprinting nothing itself — the
// caller decides which values need hashing vs. raw commitment per
// spec.md's element taxonomy (internal/element.ElementType).
func AssertionsFromValues(pubs, fqs [][32]byte, hashes [][20]byte) Assertions {
	return Assertions{Pubs: pubs, Fqs: fqs, Hashes: hashes}
}

// Fingerprint160 re-exports internal/element's BLAKE3-160
// fingerprint, the one hashing primitive every layer of this module
// shares.
func Fingerprint160(preimage []byte) [20]byte { return element.Fingerprint160(preimage) }
