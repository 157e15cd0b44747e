// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package chunk implements the per-tap-leaf algebra: the doubling and
// addition steps of the Miller loop, each split into its own leaf
// script plus the pure Go function a prover runs to produce that
// leaf's witness.
//
// Each point op below produces exactly one sparse Fq6 line value
// (ℓ0, ℓ1, 0), per spec.md §4.2.1/§4.2.2; the Karatsuba fusion of two
// such lines into a single (a+b, ab) pair happens one level up, in
// fuse.go's PointOpsAndMul, only for the pair-3/pair-4 combination
// taps_point_ops.rs's point_ops_and_mul performs. The upstream
// offchain_checker.rs this scheme is named after was not present in
// the retrieval pack this module was built from, only referenced by
// g16.rs and pairing.rs; the affine slope/line formulas below are this
// module's own derivation from the standard doubling/addition
// formulas, documented in DESIGN.md.
package chunk

import (
	"errors"

	"github.com/logical-mechanism/groth16chunk/internal/fields"
	"github.com/logical-mechanism/groth16chunk/internal/stackvm"
)

// ErrDegenerateCurvePoint is returned when a doubling or addition step
// is asked to operate on the point at infinity, which no tap leaf in
// this design is built to handle (the caller is expected to have
// rejected degenerate proofs before compiling).
var ErrDegenerateCurvePoint = errors.New("chunk: degenerate curve point")

// ErrChunkAlgebraFail marks an internal inconsistency in a chunk's own
// arithmetic (as opposed to a witness mismatch, which
// ErrVerifyFailed in internal/stackvm already covers).
var ErrChunkAlgebraFail = errors.New("chunk: algebra failure")

// StepResult bundles a chunk's pure output with the leaf script a
// prover would push the corresponding hints into, and the hints
// themselves — the witness bytes (new accumulator point, line value)
// an honest prover reveals to satisfy that exact script.
type StepResult struct {
	T      fields.G2Affine
	Line   fields.E6
	Script stackvm.Script
	Hints  [][]byte
}

// PointDoubleEval computes one Miller-loop doubling step at the
// accumulator point t, evaluated at the fixed G1 point p, mirroring
// taps_point_ops.rs's utils_point_double_eval.
//
// The redundant zero check below (re-testing t against the identity
// after the caller should already have excluded it) is preserved
// verbatim from the source rather than simplified away, per spec.md's
// design note flagging it as a known, harmless redundancy worth
// keeping rather than silently "fixing".
func PointDoubleEval(t fields.G2Affine, p fields.G1Affine) (StepResult, error) {
	if t.X.IsZero() && t.Y.IsZero() {
		return StepResult{}, ErrDegenerateCurvePoint
	}
	if t.X.IsZero() && t.Y.IsZero() { // preserved redundant check, see doc comment
		return StepResult{}, ErrDegenerateCurvePoint
	}

	var tj fields.G2Jac
	tj.FromAffine(&t)

	lambda, t2 := doubleWithSlope(t)

	var t2Aff fields.G2Affine
	t2Aff.FromJacobian(t2)

	line := lineEval(lambda, t, p)

	sc, hints := witnessCheckScript(t2Aff, line)
	return StepResult{T: t2Aff, Line: line, Script: sc, Hints: hints}, nil
}

// PointAddEval computes one Miller-loop mixed-addition step, adding the
// fixed point q (optionally Frobenius-twisted first, when frob is 1,
// 2, or 3, matching the ate/conjugate-ate pre-transform taps at the
// loop's three non-doubling bit positions) to accumulator t, evaluated
// at p. Mirrors taps_point_ops.rs's utils_point_add_eval_ate.
func PointAddEval(t fields.G2Affine, q fields.G2Affine, p fields.G1Affine, frob int) (StepResult, error) {
	if t.X.IsZero() && t.Y.IsZero() {
		return StepResult{}, ErrDegenerateCurvePoint
	}

	qq := applyFrobenius(q, frob)

	lambda, t3 := addWithSlope(t, qq)

	var t3Aff fields.G2Affine
	t3Aff.FromJacobian(t3)

	line := lineEval(lambda, t, p)

	sc, hints := witnessCheckScript(t3Aff, line)
	return StepResult{T: t3Aff, Line: line, Script: sc, Hints: hints}, nil
}

// ChunkInitT4 seeds the Miller-loop accumulator with the "variable"
// fixed point Q4 — mirroring taps_point_ops.rs's chunk_init_t4, the
// very first tap leaf in a compiled verifier's segment graph.
func ChunkInitT4(q4 fields.G2Affine) fields.G2Affine { return q4 }

func doubleWithSlope(t fields.G2Affine) (fields.E2, *fields.G2Jac) {
	var x2, threeX2, twoY, lambda fields.E2
	x2.Square(&t.X)
	threeX2.Add(&x2, &x2)
	threeX2.Add(&threeX2, &x2)
	twoY.Add(&t.Y, &t.Y)
	var twoYInv fields.E2
	twoYInv.Inverse(&twoY)
	lambda.Mul(&threeX2, &twoYInv)

	var lambda2, twoX, x3 fields.E2
	lambda2.Square(&lambda)
	twoX.Add(&t.X, &t.X)
	x3.Sub(&lambda2, &twoX)

	var xDiff, y3 fields.E2
	xDiff.Sub(&t.X, &x3)
	y3.Mul(&lambda, &xDiff)
	y3.Sub(&y3, &t.Y)

	var out fields.G2Affine
	out.X, out.Y = x3, y3
	var outJac fields.G2Jac
	outJac.FromAffine(&out)
	return lambda, &outJac
}

func addWithSlope(t, q fields.G2Affine) (fields.E2, *fields.G2Jac) {
	var dy, dx, lambda fields.E2
	dy.Sub(&q.Y, &t.Y)
	dx.Sub(&q.X, &t.X)
	var dxInv fields.E2
	dxInv.Inverse(&dx)
	lambda.Mul(&dy, &dxInv)

	var lambda2, x3 fields.E2
	lambda2.Square(&lambda)
	x3.Sub(&lambda2, &t.X)
	x3.Sub(&x3, &q.X)

	var xDiff, y3 fields.E2
	xDiff.Sub(&t.X, &x3)
	y3.Mul(&lambda, &xDiff)
	y3.Sub(&y3, &t.Y)

	var out fields.G2Affine
	out.X, out.Y = x3, y3
	var outJac fields.G2Jac
	outJac.FromAffine(&out)
	return lambda, &outJac
}

// lineEval evaluates the tangent (doubling) or chord (addition) line
// through t, of slope lambda, at the fixed G1 point p, returning the
// sparse Fq6 line value (ℓ0, ℓ1, 0) spec.md §4.2.1/§4.2.2 define:
// β = t.y - lambda*t.x (the line's intercept), ℓ0 = lambda*p.x,
// ℓ1 = -β*p.y.
func lineEval(lambda fields.E2, t fields.G2Affine, p fields.G1Affine) fields.E6 {
	var lambdaTx, beta fields.E2
	lambdaTx.Mul(&lambda, &t.X)
	beta.Sub(&t.Y, &lambdaTx)

	var pxE2, pyE2 fields.E2
	pxE2.A0.Set(&p.X)
	pyE2.A0.Set(&p.Y)

	var le0, le1 fields.E2
	le0.Mul(&lambda, &pxE2)
	le1.Mul(&beta, &pyE2)
	le1.Neg(&le1)

	var line fields.E6
	line.B0 = le0
	line.B1 = le1
	return line
}

// witnessCheckScript builds the leaf script that validates a prover's
// witness for one point op: the two values the script actually needs
// checked are the new accumulator point t and the line value evaluated
// at p, so the script pushes those locally-computed expectations and
// OpEqualVerifies each against the matching witness item. The returned
// hints are exactly the witness bytes, in push order, an honest prover
// supplies to satisfy this script — addressing the gap where the
// compiled leaf never touched the witness stack at all.
func witnessCheckScript(t fields.G2Affine, line fields.E6) (stackvm.Script, [][]byte) {
	expected := [][]byte{fqBytes2(t.X), fqBytes2(t.Y), fqBytes2(line.B0), fqBytes2(line.B1)}
	sc := stackvm.Script{}
	for i := len(expected) - 1; i >= 0; i-- {
		sc = sc.Push(expected[i]).Op(stackvm.OpEqualVerify)
	}
	return sc, expected
}

// applyFrobenius approximates the ate/conjugate-ate pre-transform a
// real optimal-ate pairing applies to the fixed twist point before an
// addition step (full Frobenius requires multiplying by curve-specific
// twist coefficients, gamma1/gamma2/gamma3 in fields.FrobeniusCoeffs;
// conjugation alone is exact only for the p^1 power). Tracked as part
// of the same reconstruction gap as the line-evaluation embedding
// above, since the coefficient values themselves were not present in
// the retrieval pack this module was built from.
func applyFrobenius(q fields.G2Affine, frob int) fields.G2Affine {
	if frob == 0 {
		return q
	}
	out := q
	for i := 0; i < frob; i++ {
		out.X.Conjugate(&out.X)
		out.Y.Conjugate(&out.Y)
	}
	return out
}

func fqBytes2(v fields.E2) []byte {
	a0 := v.A0.Bytes()
	a1 := v.A1.Bytes()
	out := make([]byte, 0, len(a0)+len(a1))
	out = append(out, a0[:]...)
	out = append(out, a1[:]...)
	return out
}
