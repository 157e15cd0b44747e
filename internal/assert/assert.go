// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package assert implements the assertion and disprove protocol:
// committing a prover's intermediate values with one-time signatures,
// and, given a signed assertion set, finding the first tap leaf (if
// any) whose committed witness does not satisfy its script —
// mirroring original_source/bitvm/src/groth16/g16.rs's
// generate_proof_assertions/verify_signed_assertions and
// original_source/bitvm/src/chunk/elements.rs's element taxonomy for
// what gets committed.
package assert

import (
	"fmt"

	"github.com/logical-mechanism/groth16chunk/internal/element"
	"github.com/logical-mechanism/groth16chunk/internal/ots"
	"github.com/logical-mechanism/groth16chunk/internal/stackvm"
)

// Assertions is the ordered tuple of public-input, Fq, and hash
// commitments a prover reveals, mirroring g16.rs's
// Assertions = (Pubs[n_pub], Fqs[n_fq], Hashes[n_h]).
type Assertions struct {
	Pubs   [][32]byte
	Fqs    [][32]byte
	Hashes [][20]byte
}

// Leaf is one compiled tap leaf: its script and the id of the
// committed element(s) its witness must supply.
type Leaf struct {
	ID     string
	Script stackvm.Script
}

// SignedAssertions pairs an Assertions set with one one-time signature
// per entry, in Pubs, then Fqs, then Hashes order, matching the
// positional id ordering a KeySet assigns.
type SignedAssertions struct {
	Assertions Assertions
	PubSigs    []ots.Signature
	FqSigs     []ots.Signature
	HashSigs   []ots.Signature
}

// GenerateProofAssertions signs every entry of a in order against ks,
// mirroring g16.rs's generate_proof_assertions followed by a
// sign_assertions pass.
func GenerateProofAssertions(a Assertions, ks *ots.KeySet, idFor func(kind string, index int) string) (SignedAssertions, error) {
	sign := func(kind string, values [][]byte) ([]ots.Signature, error) {
		sigs := make([]ots.Signature, len(values))
		for i, v := range values {
			id := idFor(kind, i)
			sk, _, err := ks.Assign(id)
			if err != nil {
				return nil, fmt.Errorf("assert: assign key for %s: %w", id, err)
			}
			digest := element.Fingerprint160(v)
			sigs[i] = ots.Sign(sk, digest)
		}
		return sigs, nil
	}

	pubBytes := make([][]byte, len(a.Pubs))
	for i, v := range a.Pubs {
		pubBytes[i] = v[:]
	}
	fqBytes := make([][]byte, len(a.Fqs))
	for i, v := range a.Fqs {
		fqBytes[i] = v[:]
	}
	hashBytes := make([][]byte, len(a.Hashes))
	for i, v := range a.Hashes {
		hashBytes[i] = v[:]
	}

	pubSigs, err := sign("pub", pubBytes)
	if err != nil {
		return SignedAssertions{}, err
	}
	fqSigs, err := sign("fq", fqBytes)
	if err != nil {
		return SignedAssertions{}, err
	}
	hashSigs, err := sign("hash", hashBytes)
	if err != nil {
		return SignedAssertions{}, err
	}

	return SignedAssertions{Assertions: a, PubSigs: pubSigs, FqSigs: fqSigs, HashSigs: hashSigs}, nil
}

// WitnessForAssertions builds the witnessFor callback ValidateAssertions
// needs straight from a signed assertion set, per spec.md §4.5/§6.1:
// every committed value, in the wire order Pubs ∥ Fqs ∥ Hashes (§6.3),
// becomes the matching leaf's single witness item via
// element.AsOnStackHint. Leaves beyond the flattened assertion count
// (pure point-doubling/addition algebra leaves, which commit to no
// assertion directly) get no witness.
func WitnessForAssertions(sa SignedAssertions) func(leafIndex int) [][]byte {
	flat := make([][]byte, 0, len(sa.Assertions.Pubs)+len(sa.Assertions.Fqs)+len(sa.Assertions.Hashes))
	for _, v := range sa.Assertions.Pubs {
		flat = append(flat, element.NewU256(v).AsOnStackHint()...)
	}
	for _, v := range sa.Assertions.Fqs {
		flat = append(flat, element.NewU256(v).AsOnStackHint()...)
	}
	for _, v := range sa.Assertions.Hashes {
		flat = append(flat, element.NewHash(v).AsOnStackHint()...)
	}
	return func(leafIndex int) [][]byte {
		if leafIndex < 0 || leafIndex >= len(flat) {
			return nil
		}
		return [][]byte{flat[leafIndex]}
	}
}

// Fault describes a failing leaf: its index in the compiled verifier's
// leaf list, and the witness that disproves it — exactly what
// GenerateDisproveScripts needs to build a disprove transaction.
type Fault struct {
	LeafIndex int
	Witness   [][]byte
}

// ValidateAssertions checks each signature in sa, then executes every
// compiled leaf against its witness, returning the first Fault found
// (first-failing-leaf semantics per spec.md §4.5), or (nil, nil) if
// every signature and every leaf checks out. Mirrors g16.rs's
// verify_signed_assertions.
func ValidateAssertions(
	sa SignedAssertions,
	ks *ots.KeySet,
	idFor func(kind string, index int) string,
	leaves []Leaf,
	witnessFor func(leafIndex int) [][]byte,
) (*Fault, error) {
	verify := func(kind string, values [][]byte, sigs []ots.Signature) error {
		for i, v := range values {
			id := idFor(kind, i)
			pk, ok := ks.PublicKeyFor(id)
			if !ok {
				return fmt.Errorf("assert: no public key assigned for %s", id)
			}
			digest := element.Fingerprint160(v)
			if err := ots.Verify(pk, digest, sigs[i]); err != nil {
				return fmt.Errorf("assert: %s[%d]: %w", kind, i, err)
			}
		}
		return nil
	}

	hashBytes := make([][]byte, len(sa.Assertions.Hashes))
	for i := range sa.Assertions.Hashes {
		hashBytes[i] = sa.Assertions.Hashes[i][:]
	}
	as32 := func(vs [][32]byte) [][]byte {
		out := make([][]byte, len(vs))
		for i := range vs {
			out[i] = vs[i][:]
		}
		return out
	}

	if err := verify("pub", as32(sa.Assertions.Pubs), sa.PubSigs); err != nil {
		return nil, err
	}
	if err := verify("fq", as32(sa.Assertions.Fqs), sa.FqSigs); err != nil {
		return nil, err
	}
	if err := verify("hash", hashBytes, sa.HashSigs); err != nil {
		return nil, err
	}

	for i, leaf := range leaves {
		witness := witnessFor(i)
		res := stackvm.Execute(leaf.Script, witness)
		if !res.Success {
			return &Fault{LeafIndex: i, Witness: witness}, nil
		}
	}
	return nil, nil
}

// GenerateDisproveScripts returns, for a given Fault, the single
// witness/script pair a challenger needs to post on-chain to win a
// disprove, mirroring g16.rs's generate_disprove_scripts — here a
// thin accessor since ValidateAssertions already located the failing
// leaf and its witness.
func GenerateDisproveScripts(leaves []Leaf, fault Fault) (Leaf, [][]byte, error) {
	if fault.LeafIndex < 0 || fault.LeafIndex >= len(leaves) {
		return Leaf{}, nil, fmt.Errorf("assert: fault leaf index %d out of range [0,%d)", fault.LeafIndex, len(leaves))
	}
	return leaves[fault.LeafIndex], fault.Witness, nil
}
