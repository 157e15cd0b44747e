// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package chunk

import (
	"fmt"

	"github.com/logical-mechanism/groth16chunk/internal/element"
	"github.com/logical-mechanism/groth16chunk/internal/fields"
	"github.com/logical-mechanism/groth16chunk/internal/stackvm"
)

// FusedStep is one tap leaf's combined contribution to the Miller
// loop: the fixed pairs' points this step advances, and the fused
// Fq6 G2Eval aggregate every downstream leaf depends on through
// element.ElemG2Eval's hashes rather than raw values.
type FusedStep struct {
	T2, T3, T4 fields.G2Affine
	// ASumB and AB are the fused (ℓ+g, ℓ*g) Karatsuba pair of the
	// variable pair-4 line (ℓ) and the fixed pair-3 line (g) — per
	// spec.md §4.2.3 and taps_point_ops.rs:291-294, only these two
	// lines fuse.
	ASumB, AB fields.E6
	// P2LE is the fixed pair-2 line, kept separate and un-fused.
	P2LE fields.E6
	// ResidueHint is this step's (1⊕ℓ)·(1⊕p2le)·(1⊕g) sparse-Fq12
	// triple product, projected to Fq6, per spec.md §4.2.3 step 5.
	ResidueHint fields.E6
	Script      stackvm.Script
	// Hints is the witness Script expects, bottom-to-top: since Script
	// is r2's ops followed by r3's then r4's, and each sub-script's
	// first instruction consumes the current top of stack, the three
	// StepResults' own Hints concatenate in reverse execution order
	// (r4 first/bottom, then r3, then r2/top) so r2's ops — which run
	// first — see their expected items on top.
	Hints [][]byte
	// HashT and HashLE are the two commitments element.ElemG2Eval
	// exposes for this step, the only values a downstream tap leaf
	// ever actually witnesses instead of the raw Fq6/G2 values above.
	HashT  [20]byte
	HashLE [20]byte
}

// PointOpsAndMul fuses the per-loop-step contribution of three pairs
// in one tap leaf: the variable pair (t4, q4, p4) and two fixed pairs
// (t3, p3) and (t2, p2), mirroring taps_point_ops.rs's
// point_ops_and_mul. isDouble selects doubling vs. addition for all
// three pairs in lock-step, matching one ate-loop bit; frob carries
// the addition-step Frobenius pre-transform, applied to all three
// pairs' q.
//
// Per spec.md §4.2.3 and taps_point_ops.rs:269-306, only pair 4's line
// (ℓ, the variable accumulator) and pair 3's line (g, fixed) fuse into
// one Karatsuba (a+b, ab) pair; pair 2's line (p2le) stays separate.
func PointOpsAndMul(
	t2, t3, t4 fields.G2Affine,
	p2, p3, p4 fields.G1Affine,
	q2, q3, q4 fields.G2Affine,
	isDouble bool,
	frob int,
) (FusedStep, error) {
	step := func(t, q fields.G2Affine, p fields.G1Affine) (StepResult, error) {
		if isDouble {
			return PointDoubleEval(t, p)
		}
		return PointAddEval(t, q, p, frob)
	}

	r2, err := step(t2, q2, p2)
	if err != nil {
		return FusedStep{}, fmt.Errorf("pointOpsAndMul: fixed pair 2: %w", err)
	}
	r3, err := step(t3, q3, p3)
	if err != nil {
		return FusedStep{}, fmt.Errorf("pointOpsAndMul: fixed pair 3: %w", err)
	}
	r4, err := step(t4, q4, p4)
	if err != nil {
		return FusedStep{}, fmt.Errorf("pointOpsAndMul: variable pair 4: %w", err)
	}

	le, g, p2le := r4.Line, r3.Line, r2.Line

	var ab, apb fields.E6
	ab.Mul(&le, &g)
	apb.Add(&le, &g)

	residueHint := tripleResidueHint(le, p2le, g)

	sc := stackvm.Script{}
	sc = append(sc, r2.Script...)
	sc = append(sc, r3.Script...)
	sc = append(sc, r4.Script...)

	hints := append(append(append([][]byte{}, r4.Hints...), r3.Hints...), r2.Hints...)

	out := FusedStep{
		T2: r2.T, T3: r3.T, T4: r4.T,
		ASumB: apb, AB: ab, P2LE: p2le, ResidueHint: residueHint,
		Script: sc, Hints: hints,
	}
	out.HashT, out.HashLE = fingerprintG2Eval(out)
	return out, nil
}

// tripleResidueHint computes (1⊕le)·(1⊕p2le)·(1⊕g) in the sparse
// Fq12 tower (each factor 1 + sparse-Fq6-limb·w), projected back to
// Fq6 as c1/c0, per spec.md §4.2.3 step 5 and
// taps_point_ops.rs:297-306's res_hint. Represented without a full E12
// type: for 1+a*w and 1+b*w with w^2=ν (the Fq12 tower's Fq6
// non-residue), the product is (1+ab*ν) + (a+b)*w, so its c1/c0 ratio
// reduces to chained Fq6 arithmetic built only from the already
// verified E2/E6 operations plus mulByFp12NonResidue below.
func tripleResidueHint(le, p2le, g fields.E6) fields.E6 {
	c0a, c1a := combineSparse(le, p2le)
	c0, c1 := combineSparseFull(c0a, c1a, g)

	var c0Inv fields.E6
	c0Inv.Inverse(&c0)
	var out fields.E6
	out.Mul(&c1, &c0Inv)
	return out
}

// combineSparse multiplies (1+a*w)*(1+b*w) = (1+ab*ν) + (a+b)*w,
// returning the resulting (c0, c1) Fq12 coefficients still in terms of
// Fq6 arithmetic.
func combineSparse(a, b fields.E6) (c0, c1 fields.E6) {
	var ab fields.E6
	ab.Mul(&a, &b)
	nr := mulByFp12NonResidue(ab)
	c0.SetOne()
	c0.Add(&c0, &nr)
	c1.Add(&a, &b)
	return c0, c1
}

// combineSparseFull multiplies (c0+c1*w)*(1+g*w) using the same tower
// relation, completing the three-way product tripleResidueHint needs.
func combineSparseFull(c0, c1, g fields.E6) (outC0, outC1 fields.E6) {
	var c1g fields.E6
	c1g.Mul(&c1, &g)
	nr := mulByFp12NonResidue(c1g)
	outC0.Add(&c0, &nr)

	var c0g fields.E6
	c0g.Mul(&c0, &g)
	outC1.Add(&c1, &c0g)
	return outC0, outC1
}

// mulByFp12NonResidue multiplies an Fq6 value by the Fq12 tower's
// quadratic non-residue ν (w² = ν in the standard
// Fp12 = Fp6[w]/(w²-ν) construction, ν being Fp6's own generator v):
// a cyclic shift of the three Fq2 limbs, with the wrapped limb
// multiplied by Fq2's own sextic non-residue (fields.Nonresidue),
// since v³ = that non-residue by Fq6's own tower relation.
func mulByFp12NonResidue(c fields.E6) fields.E6 {
	nr := fields.Nonresidue()
	var out fields.E6
	var wrapped fields.E2
	wrapped.Mul(&c.B2, &nr)
	out.B0 = wrapped
	out.B1 = c.B0
	out.B2 = c.B1
	return out
}

// CompletePointEvalAndMul verifies the residue hint closes the final
// identity residueHint * denominator == numerator in Fq6 (the
// divisionless trick spec.md §4.3/§9 calls out, avoiding an in-script
// Fq6 inversion), mirroring taps_point_ops.rs's
// complete_point_eval_and_mul. numerator and denominator are derived
// from f's own ab (= ℓ*g), a+b (= ℓ+g), and p2le fields:
//
//	numerator   = (a+b) + p2le + β²·(ab·p2le)
//	denominator = 1 + β²·((a+b)·p2le + ab)
//
// where β² folds an Fq6 value into the Fq12 tower via
// mulByFp12NonResidue. f.ResidueHint is the value published on
// success.
func CompletePointEvalAndMul(f element.ElemG2Eval) (fields.E6, stackvm.Script, error) {
	ab, apb, c := f.AB, f.ASumB, f.P2LE

	var abc fields.E6
	abc.Mul(&ab, &c)

	var apbpc fields.E6
	apbpc.Add(&apb, &c)
	numerator := apbpc
	abcNR := mulByFp12NonResidue(abc)
	numerator.Add(&numerator, &abcNR)

	var apbc fields.E6
	apbc.Mul(&apb, &c)
	var inner fields.E6
	inner.Add(&apbc, &ab)
	var one fields.E6
	one.SetOne()
	denominator := one
	innerNR := mulByFp12NonResidue(inner)
	denominator.Add(&denominator, &innerNR)

	var lhs fields.E6
	lhs.Mul(&f.ResidueHint, &denominator)
	ok := lhs.Equal(&numerator)

	sc := stackvm.Script{}.
		Push(e6Bytes(lhs)).
		Push(e6Bytes(numerator)).
		Op(stackvm.OpEqualVerify)

	if !ok {
		return fields.E6{}, sc, fmt.Errorf("%w: residue hint does not close numerator/denominator identity", ErrChunkAlgebraFail)
	}
	return f.ResidueHint, sc, nil
}

func e6Bytes(v fields.E6) []byte {
	out := make([]byte, 0, 6*32)
	for _, limb := range []fields.E2{v.B0, v.B1, v.B2} {
		out = append(out, fqBytes2(limb)...)
	}
	return out
}

// fingerprintG2Eval produces the two hashes element.ElemG2Eval exposes
// for a FusedStep, the boundary every downstream tap leaf actually
// commits to instead of the raw Fq6/G2 values.
func fingerprintG2Eval(step FusedStep) (hashT, hashLE [20]byte) {
	e := element.ElemG2Eval{T: step.T4, ASumB: step.ASumB, AB: step.AB, P2LE: step.P2LE}
	return e.HashT(), e.HashLE()
}
