// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package element

import (
	"github.com/logical-mechanism/groth16chunk/internal/fields"
)

// ElemG2Eval is the aggregate record one pairing-loop step produces:
// the updated accumulator point T, the two partial line-evaluation
// sums (a+b, ab), the running p2-scaled line evaluation, and the
// residue hint carried forward for the final completion chunk. It
// mirrors elements.rs's ElemG2Eval, whose fields are too large
// (multiple Fq6 values) to commit individually, so only two derived
// hashes ever reach the script VM.
type ElemG2Eval struct {
	T          fields.G2Affine
	ASumB      fields.E6
	AB         fields.E6
	P2LE       fields.E6
	ResidueHint fields.E6
}

// HashT fingerprints only the accumulator point T, the value the next
// loop step's doubling/addition chunk actually needs as input.
func (e ElemG2Eval) HashT() [20]byte {
	return Fingerprint160(g2AffinePreimage(e.T))
}

// HashLE fingerprints the three line-evaluation limbs together
// (a+b, ab, p2le), the value the completion chunk needs alongside
// HashT to finish the Fq12 accumulation.
func (e ElemG2Eval) HashLE() [20]byte {
	pre := make([]byte, 0, 3*6*32)
	pre = append(pre, e6Preimage(e.ASumB)...)
	pre = append(pre, e6Preimage(e.AB)...)
	pre = append(pre, e6Preimage(e.P2LE)...)
	return Fingerprint160(pre)
}

// Mock returns a zero-valued ElemG2Eval, used the way the Rust source's
// ElemG2Eval::mock() seeds a placeholder before a pairing-loop driver
// has produced a real step.
func Mock() ElemG2Eval {
	var e ElemG2Eval
	e.T.X.SetZero()
	e.T.Y.SetZero()
	return e
}

func g2AffinePreimage(p fields.G2Affine) []byte {
	xb := p.X.Bytes()
	yb := p.Y.Bytes()
	out := make([]byte, 0, len(xb)+len(yb))
	out = append(out, xb[:]...)
	out = append(out, yb[:]...)
	return out
}

func e6Preimage(v fields.E6) []byte {
	out := make([]byte, 0, 6*32)
	for _, limb := range [][]byte{
		fqBytes(v.B0.A0), fqBytes(v.B0.A1),
		fqBytes(v.B1.A0), fqBytes(v.B1.A1),
		fqBytes(v.B2.A0), fqBytes(v.B2.A1),
	} {
		out = append(out, limb...)
	}
	return out
}

type fqLike interface {
	Bytes() [32]byte
}

func fqBytes[T fqLike](v T) []byte {
	b := v.Bytes()
	return b[:]
}
