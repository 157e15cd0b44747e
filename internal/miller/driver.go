// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package miller

import (
	"fmt"

	"github.com/logical-mechanism/groth16chunk/internal/chunk"
	"github.com/logical-mechanism/groth16chunk/internal/element"
	"github.com/logical-mechanism/groth16chunk/internal/fields"
	"github.com/logical-mechanism/groth16chunk/internal/stackvm"
)

// PairingInputs bundles the four (G1, G2) pairs a Groth16 verification
// equation checks: e(p1,q1)*e(p2,q2)*e(p3,q3)*e(p4,q4) == 1, with p4/q4
// the "variable" pair (the proof's own A, B), p2 the proof's C, and
// p1, p3 and q1..q3 taken from the verifying key, mirroring g16.rs's wiring
// (p1=alpha, p2=C, p3=vk_x, p4=A; q1=-beta, q2=-delta, q3=-gamma, q4=B).
type PairingInputs struct {
	P1, P2, P3, P4 fields.G1Affine
	Q1, Q2, Q3, Q4 fields.G2Affine
}

// Trace is the ordered list of per-loop-step fused outputs a compiled
// verifier's tap leaves each correspond to one-for-one.
type Trace struct {
	Steps []chunk.FusedStep
	// Final* mirror the last loop step's own (a+b, ab, p2le,
	// residueHint) G2Eval fields — the values the driver's single
	// terminal completion chunk (spec.md §4.4's "Final" state) checks
	// against each other via chunk.CompletePointEvalAndMul.
	FinalASumB, FinalAB, FinalP2LE, FinalResidueHint fields.E6
}

// RunMillerLoop walks BN254's 6u+2 ate-loop NAF digits high to low,
// emitting a doubling FusedStep for every digit and an extra addition
// FusedStep on nonzero digits (adding q for 1, -q for -1), mirroring
// the loop structure original_source/src/bn254/pairing.rs documents and
// g16.rs drives. P1 and Q1 are not read here: neither the loop nor its
// final completion check includes e(p1,q1).
func RunMillerLoop(in PairingInputs) (Trace, error) {
	naf := fields.NAFLoopBits()

	t2, t3, t4 := in.Q2, in.Q3, chunk.ChunkInitT4(in.Q4)

	var trace Trace
	var last chunk.FusedStep

	for i, bit := range naf {
		isDouble := true
		q2, q3, q4 := in.Q2, in.Q3, in.Q4
		if bit != 0 {
			isDouble = false
			if bit == -1 {
				q2.Neg(&in.Q2)
				q3.Neg(&in.Q3)
				q4.Neg(&in.Q4)
			}
		}

		fused, err := chunk.PointOpsAndMul(t2, t3, t4, in.P2, in.P3, in.P4, in.Q2, in.Q3, in.Q4, true, 0)
		if err != nil {
			return Trace{}, fmt.Errorf("miller: loop step %d (double): %w", i, err)
		}
		t2, t3, t4 = fused.T2, fused.T3, fused.T4
		last = fused
		trace.Steps = append(trace.Steps, fused)

		if !isDouble {
			added, err := chunk.PointOpsAndMul(t2, t3, t4, in.P2, in.P3, in.P4, q2, q3, q4, false, 0)
			if err != nil {
				return Trace{}, fmt.Errorf("miller: loop step %d (add): %w", i, err)
			}
			t2, t3, t4 = added.T2, added.T3, added.T4
			last = added
			trace.Steps = append(trace.Steps, added)
		}
	}

	trace.FinalASumB, trace.FinalAB, trace.FinalP2LE, trace.FinalResidueHint =
		last.ASumB, last.AB, last.P2LE, last.ResidueHint

	final := element.ElemG2Eval{
		T: t4, ASumB: last.ASumB, AB: last.AB, P2LE: last.P2LE, ResidueHint: last.ResidueHint,
	}
	if _, _, err := chunk.CompletePointEvalAndMul(final); err != nil {
		return Trace{}, fmt.Errorf("miller: final completion chunk: %w", err)
	}

	return trace, nil
}

// LeafScripts flattens a Trace's per-step leaf scripts in loop order,
// the exact sequence compile.CompileVerifier emits as tap leaves.
func (t Trace) LeafScripts() []stackvm.Script {
	out := make([]stackvm.Script, len(t.Steps))
	for i, s := range t.Steps {
		out[i] = s.Script
	}
	return out
}

// LeafWitnesses flattens a Trace's per-step hints in loop order,
// matching LeafScripts index-for-index: the witness an honest prover
// supplies to satisfy the corresponding compiled leaf.
func (t Trace) LeafWitnesses() [][][]byte {
	out := make([][][]byte, len(t.Steps))
	for i, s := range t.Steps {
		out[i] = s.Hints
	}
	return out
}
