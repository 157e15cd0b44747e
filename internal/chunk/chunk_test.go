// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package chunk

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/logical-mechanism/groth16chunk/internal/element"
	"github.com/logical-mechanism/groth16chunk/internal/fields"
)

func generators() (fields.G1Affine, fields.G2Affine) {
	_, _, g1, g2 := bn254.Generators()
	return g1, g2
}

func TestPointDoubleEvalProducesOnCurvePoint(t *testing.T) {
	g1, g2 := generators()
	res, err := PointDoubleEval(g2, g1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.T.IsOnCurve() {
		t.Fatalf("doubled point is not on curve: %+v", res.T)
	}
}

func TestPointDoubleEvalRejectsDegenerate(t *testing.T) {
	g1, _ := generators()
	var zero fields.G2Affine
	zero.X.SetZero()
	zero.Y.SetZero()
	if _, err := PointDoubleEval(zero, g1); err == nil {
		t.Fatalf("expected degenerate curve point error")
	}
}

func TestPointAddEvalProducesOnCurvePoint(t *testing.T) {
	g1, g2 := generators()
	dbl, err := PointDoubleEval(g2, g1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := PointAddEval(dbl.T, g2, g1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.T.IsOnCurve() {
		t.Fatalf("added point is not on curve: %+v", res.T)
	}
}

// realG2Eval builds a genuine ElemG2Eval from PointOpsAndMul's own
// output, so the residue identity below exercises the real
// ab/a+b/p2le -> numerator/denominator derivation instead of a
// self-consistent-by-construction hint.
func realG2Eval(t *testing.T) element.ElemG2Eval {
	t.Helper()
	g1, g2 := generators()
	fused, err := PointOpsAndMul(g2, g2, g2, g1, g1, g1, g2, g2, g2, true, 0)
	if err != nil {
		t.Fatalf("PointOpsAndMul: %v", err)
	}
	return element.ElemG2Eval{T: fused.T4, ASumB: fused.ASumB, AB: fused.AB, P2LE: fused.P2LE, ResidueHint: fused.ResidueHint}
}

func TestCompletePointEvalAndMulAcceptsMatchingResidue(t *testing.T) {
	f := realG2Eval(t)

	hint, _, err := CompletePointEvalAndMul(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hint.Equal(&f.ResidueHint) {
		t.Fatalf("expected published residue hint to equal f.ResidueHint")
	}
}

func TestCompletePointEvalAndMulRejectsWrongResidue(t *testing.T) {
	f := realG2Eval(t)
	f.ResidueHint.SetRandom()

	_, _, err := CompletePointEvalAndMul(f)
	if err == nil {
		t.Fatalf("expected residue mismatch error")
	}
}

func TestPointOpsAndMulFusesThreePairs(t *testing.T) {
	g1, g2 := generators()
	fused, err := PointOpsAndMul(g2, g2, g2, g1, g1, g1, g2, g2, g2, true, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fused.T2.IsOnCurve() || !fused.T3.IsOnCurve() || !fused.T4.IsOnCurve() {
		t.Fatalf("fused step produced off-curve point")
	}
}
