// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package ots implements the one-time, hash-chain signature scheme
// the assertion/disprove protocol uses to bind a prover to each
// committed intermediate value: a Winternitz-style scheme over BLAKE3
// chains. spec.md names this an external collaborator and only
// specifies its sign/verify contract (§6.2); no Winternitz
// implementation exists anywhere in this module's retrieval pack, so
// the scheme below is original work, shaped by
// original_source/src/chunker/assigner.rs only insofar as that file's
// BCAssigner trait fixes the "one key per committed id, consumed in a
// stable order" bookkeeping this package's KeySet mirrors.
package ots

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"
)

// ErrOneTimeSignatureInvalid is returned by Verify when a signature
// does not match its claimed message under the given public key.
var ErrOneTimeSignatureInvalid = errors.New("ots: signature invalid")

const (
	// chainLen is the Winternitz hash-chain length per digit (2^4,
	// matching the nibble encoding element.Nibbles produces).
	chainLen = 16
	// digits is the number of nibbles a 20-byte fingerprint expands
	// to, matching element.Nibbles' output width for a hash commitment.
	digits = 40
)

// SecretKey is digits independent 32-byte seeds, one per digit.
type SecretKey [digits][32]byte

// PublicKey is the (chainLen-1)-times-iterated hash of each SecretKey seed.
type PublicKey [digits][32]byte

// Generate creates a fresh random one-time key pair.
func Generate() (SecretKey, PublicKey, error) {
	var sk SecretKey
	for i := range sk {
		if _, err := rand.Read(sk[i][:]); err != nil {
			return SecretKey{}, PublicKey{}, fmt.Errorf("ots: generate: %w", err)
		}
	}
	return sk, derivePublicKey(sk), nil
}

func derivePublicKey(sk SecretKey) PublicKey {
	var pk PublicKey
	for i, seed := range sk {
		pk[i] = chain(seed, chainLen-1)
	}
	return pk
}

func chain(seed [32]byte, steps int) [32]byte {
	cur := seed
	for i := 0; i < steps; i++ {
		cur = blake3.Sum256(cur[:])
	}
	return cur
}

// Signature is one hash-chain preimage per digit, each iterated enough
// times to let Verify walk the remainder of the chain up to the
// public key.
type Signature [digits][32]byte

// Sign signs a 20-byte message (a fingerprint commitment, per
// spec.md's element layer) by revealing, for each nibble of the
// message, the secret seed iterated that many times.
func Sign(sk SecretKey, message [20]byte) Signature {
	nibbles := messageNibbles(message)
	var sig Signature
	for i, n := range nibbles {
		sig[i] = chain(sk[i], int(n))
	}
	return sig
}

// Verify checks sig against message under pk, completing each
// revealed chain link up to chainLen-1 steps and comparing against the
// public key.
func Verify(pk PublicKey, message [20]byte, sig Signature) error {
	nibbles := messageNibbles(message)
	for i, n := range nibbles {
		remaining := chainLen - 1 - int(n)
		got := chain(sig[i], remaining)
		if got != pk[i] {
			return fmt.Errorf("%w: digit %d", ErrOneTimeSignatureInvalid, i)
		}
	}
	return nil
}

func messageNibbles(message [20]byte) [digits]byte {
	var out [digits]byte
	for i, b := range message {
		out[2*i] = b >> 4
		out[2*i+1] = b & 0x0f
	}
	return out
}

// KeySet assigns one one-time key pair per committed element id, in
// the stable insertion order original_source/src/chunker/assigner.rs's
// BCAssigner implementations rely on, so a verifier's public-key list
// and a prover's secret-key list line up positionally without needing
// to exchange ids.
type KeySet struct {
	order []string
	sks   map[string]SecretKey
	pks   map[string]PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{sks: map[string]SecretKey{}, pks: map[string]PublicKey{}}
}

// Assign generates (or, if id was already assigned, returns) the
// one-time key pair for id.
func (k *KeySet) Assign(id string) (SecretKey, PublicKey, error) {
	if sk, ok := k.sks[id]; ok {
		return sk, k.pks[id], nil
	}
	sk, pk, err := Generate()
	if err != nil {
		return SecretKey{}, PublicKey{}, err
	}
	k.order = append(k.order, id)
	k.sks[id] = sk
	k.pks[id] = pk
	return sk, pk, nil
}

// Order returns the ids in assignment order.
func (k *KeySet) Order() []string { return append([]string{}, k.order...) }

// PublicKeyFor returns the public key assigned to id, if any.
func (k *KeySet) PublicKeyFor(id string) (PublicKey, bool) {
	pk, ok := k.pks[id]
	return pk, ok
}
