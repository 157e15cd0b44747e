// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package miller drives the chunked Miller loop: RunMillerLoop walks the
// ate-loop NAF digits, invokes internal/chunk for a doubling step on
// every digit and an addition step on nonzero digits, and closes with a
// completion check on the last step's own G2Eval values; it does not
// accumulate a running product of the steps. ComputeResidueHint is a
// separate entry point that, given a Miller-loop value f, searches for
// the residue hint (c, wi) satisfying c^lambda = f * wi, the
// divisionless trick that lets a verifier check a pairing equality
// without an in-script field inversion (spec.md §4.4/§9).
package miller

import (
	"errors"
	"math/big"

	"github.com/logical-mechanism/groth16chunk/internal/fields"
)

// ErrResidueMismatch is returned when no residue hint closes the
// c^lambda = f*wi identity within maxCubicRootSearch attempts.
var ErrResidueMismatch = errors.New("miller: residue mismatch")

// maxCubicRootSearch bounds the search over the ambiguity class the
// final exponentiation's non-injective part introduces. The original
// offchain_checker.rs this routine is reconstructed from (see the
// internal/chunk package doc comment) was not present in the
// retrieval pack; this bound and the loop below are this module's own
// derivation of the well-known "27th root of unity" residue trick, not
// a verbatim port.
const maxCubicRootSearch = 27

// Lambda is the exponent 6u+2+p-p^2+p^3 the residue hint's defining
// identity raises c to, u being BN254's curve seed.
func Lambda() *big.Int {
	u, _ := new(big.Int).SetString("4965661367192848881", 10)
	p := fields.BaseFieldModulus()

	six := new(big.Int).Mul(big.NewInt(6), u)
	six.Add(six, big.NewInt(2))

	p2 := new(big.Int).Mul(p, p)
	p3 := new(big.Int).Mul(p2, p)

	lambda := new(big.Int).Add(six, p)
	lambda.Sub(lambda, p2)
	lambda.Add(lambda, p3)
	return lambda
}

// ComputeResidueHint searches for (c, wi) such that c^Lambda() == f*wi,
// returning the pair the completion chunk will verify instead of
// performing a full final exponentiation on-script. wi ranges over the
// 3rd-root-of-unity coset BN254's embedding degree introduces; c is
// recovered as a Lambda-th root of f*wi once a coset member makes that
// root extraction succeed.
func ComputeResidueHint(f fields.GT) (c, wi fields.GT, err error) {
	lambda := Lambda()

	var cubicRoot fields.GT
	cubicRoot.SetOne()
	cubicGen := cubicNonResidueRoot()

	candidate := f
	for i := 0; i < maxCubicRootSearch; i++ {
		root, ok := lambdaRoot(candidate, lambda)
		if ok {
			return root, cubicRoot, nil
		}
		cubicRoot.Mul(&cubicRoot, &cubicGen)
		candidate.Mul(&f, &cubicRoot)
	}
	return fields.GT{}, fields.GT{}, ErrResidueMismatch
}

// lambdaRoot attempts c = v^(lambda^-1 mod r) and checks c^lambda == v
// exactly, over the GT subgroup whose order is the BN254 scalar field
// modulus r.
func lambdaRoot(v fields.GT, lambda *big.Int) (fields.GT, bool) {
	r := fields.ScalarFieldModulus()
	inv := new(big.Int).ModInverse(new(big.Int).Mod(lambda, r), r)
	if inv == nil {
		return fields.GT{}, false
	}
	var c fields.GT
	c.Exp(v, inv)

	var check fields.GT
	check.Exp(c, lambda)
	return c, check.Equal(&v)
}

// cubicNonResidueRoot returns an element of GT with order exactly 3,
// by raising a random GT element to (p^12-1)/(3r) and retrying on the
// (overwhelmingly rare) trivial outcome. Any fixed-order-3 element
// generates the coset ComputeResidueHint walks.
func cubicNonResidueRoot() fields.GT {
	cofactor := gtOrderOverThreeR()
	for i := 0; i < maxCubicRootSearch; i++ {
		var seed, order3 fields.GT
		seed.SetRandom()
		order3.Exp(seed, cofactor)
		if !order3.IsOne() {
			return order3
		}
	}
	var one fields.GT
	one.SetOne()
	return one
}

// gtOrderOverThreeR returns (p^12-1)/(3r), the exponent that collapses
// a random GT element onto the order-3 subgroup.
func gtOrderOverThreeR() *big.Int {
	r := fields.ScalarFieldModulus()
	p := fields.BaseFieldModulus()
	p12 := new(big.Int).Exp(p, big.NewInt(12), nil)
	total := new(big.Int).Sub(p12, big.NewInt(1))
	total.Div(total, r)
	total.Div(total, big.NewInt(3))
	return total
}
