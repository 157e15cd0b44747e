// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package fields collects the BN254 domain constants and small helpers
// the chunk algebra and Miller-loop driver share, on top of
// gnark-crypto's bn254 tower arithmetic.
package fields

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// G1 and G2 affine/Jacobian aliases give the rest of this module one
// place to change the curve backend from, matching the way the teacher
// aliases bls12381 types through its own package.
type (
	G1Affine = bn254.G1Affine
	G1Jac    = bn254.G1Jac
	G2Affine = bn254.G2Affine
	G2Jac    = bn254.G2Jac
	E2       = bn254.E2
	E6       = bn254.E6
	E12      = bn254.E12
	GT       = bn254.GT
)

// ATELoopBits is the big.Int 6u+2 ate-loop parameter for BN254 in
// binary, most-significant bit first. The Miller-loop driver
// (internal/miller.RunMillerLoop) does not iterate this slice; it walks
// NAFLoopBits, the signed form of the same value, high-to-low.
var ATELoopBits = atLoopBits()

func atLoopBits() []int8 {
	// 6u+2 for BN254, u = 4965661367192848881.
	six := new(big.Int).Mul(big.NewInt(6), bn254U())
	loop := new(big.Int).Add(six, big.NewInt(2))
	bits := make([]int8, loop.BitLen())
	for i := range bits {
		bits[len(bits)-1-i] = int8(loop.Bit(i))
	}
	return bits
}

func bn254U() *big.Int {
	u, _ := new(big.Int).SetString("4965661367192848881", 10)
	return u
}

// NAFLoopBits returns the same 6u+2 value in signed non-adjacent form
// (each entry in {-1,0,1}), the representation
// internal/miller.RunMillerLoop branches on to decide whether a bit's
// addition step adds the twist point (1) or subtracts it (-1).
func NAFLoopBits() []int8 {
	loop := new(big.Int).Add(new(big.Int).Mul(big.NewInt(6), bn254U()), big.NewInt(2))
	return nafOf(loop)
}

func nafOf(n *big.Int) []int8 {
	n = new(big.Int).Set(n)
	var naf []int8
	zero := big.NewInt(0)
	two := big.NewInt(2)
	for n.Cmp(zero) > 0 {
		if n.Bit(0) == 1 {
			z := new(big.Int).Mod(n, big.NewInt(4))
			if z.Int64() == 3 {
				naf = append(naf, -1)
				n.Add(n, big.NewInt(1))
			} else {
				naf = append(naf, 1)
				n.Sub(n, big.NewInt(1))
			}
		} else {
			naf = append(naf, 0)
		}
		n.Div(n, two)
	}
	// reverse to most-significant-first
	for i, j := 0, len(naf)-1; i < j; i, j = i+1, j-1 {
		naf[i], naf[j] = naf[j], naf[i]
	}
	return naf
}

// FrobeniusCoeffs has slots for the three Frobenius twisting constants
// an ate (q) or conjugate-ate (q^2, q^3) pre-transform of a fixed G2
// point multiplies by, mirroring taps_point_ops.rs's use of
// Fq12Config::NONRESIDUE-derived coefficients. This module never fills
// or reads it: internal/chunk's applyFrobenius conjugates coordinates
// without these constants.
type FrobeniusCoeffs struct {
	Gamma1 E2
	Gamma2 E2
	Gamma3 E2
}

// Nonresidue returns the Fq2 value BN254 uses as its sextic
// non-residue, the value complete_point_eval_and_mul multiplies by
// when folding an Fq6 value into the Fq12 tower.
func Nonresidue() E2 {
	var nr E2
	nr.A0.SetUint64(9)
	nr.A1.SetUint64(1)
	return nr
}

// BaseFieldModulus returns BN254's base field modulus p.
func BaseFieldModulus() *big.Int {
	return fp.Modulus()
}

// ScalarFieldModulus returns BN254's scalar field modulus r, the order
// of G1/G2's prime-order subgroup and of the GT target group.
func ScalarFieldModulus() *big.Int {
	return fr.Modulus()
}

// G1ScalarLike abstracts over the scalar representation a public input
// arrives in (a gnark-crypto fr.Element, or a plain big.Int) so
// internal/compile's vk_x folding doesn't need to pick one.
type G1ScalarLike interface {
	BigIntPtr() *big.Int
}

// Scalar wraps a fr.Element as a G1ScalarLike.
type Scalar fr.Element

// BigIntPtr returns s as a *big.Int in [0, r).
func (s Scalar) BigIntPtr() *big.Int {
	e := fr.Element(s)
	var out big.Int
	e.BigInt(&out)
	return &out
}

// NewScalar builds a Scalar from a small integer, convenient for tests
// and CLI parsing of decimal public inputs.
func NewScalar(v uint64) Scalar {
	var e fr.Element
	e.SetUint64(v)
	return Scalar(e)
}
