// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package fixture builds the trivial end-to-end test circuit this
// module's tests drive the chunker with: c = a+b, d = a*b over
// BN254, with a, b private and c, d public — the same circuit
// original_source/bitvm/src/groth16/g16.rs's mock::DummyCircuit test
// fixture uses, kept here instead of duplicated per test file. The
// setup/prove/verify plumbing mirrors the teacher's kappa.go
// (SetupVW0W1Circuit/ProveAndVerifyVW0W1), adapted from BLS12-381 to
// BN254 and from its bespoke circuit to this one.
package fixture

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/logical-mechanism/groth16chunk/internal/compile"
	"github.com/logical-mechanism/groth16chunk/internal/fields"
)

// SumProductCircuit constrains C == A+B and D == A*B, with A, B
// private and C, D public, matching g16.rs's DummyCircuit exactly
// (including the canonical test values a=5, b=-5 spec.md §8 scenario 1
// names).
type SumProductCircuit struct {
	A frontend.Variable `gnark:",secret"`
	B frontend.Variable `gnark:",secret"`
	C frontend.Variable `gnark:",public"`
	D frontend.Variable `gnark:",public"`
}

// Define implements frontend.Circuit.
func (c *SumProductCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(c.C, api.Add(c.A, c.B))
	api.AssertIsEqual(c.D, api.Mul(c.A, c.B))
	return nil
}

// Setup compiles SumProductCircuit and runs Groth16's (non-ceremony,
// single-party) setup over BN254, matching kappa.go's
// SetupVW0W1Circuit but deliberately not the teacher's MPC
// ceremony.go: spec.md's Non-goals explicitly exclude Groth16 setup
// from this module's core, so test fixtures use gnark's direct setup
// instead of standing up a multi-party contribution flow.
func Setup() (groth16.ProvingKey, groth16.VerifyingKey, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &SumProductCircuit{})
	if err != nil {
		return nil, nil, fmt.Errorf("fixture: compile circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("fixture: groth16 setup: %w", err)
	}
	return pk, vk, nil
}

// ProveSumProduct builds a witness for a, b, compiles, sets up, and
// proves, returning the compiled compile.VerifyingKey/compile.Proof
// pair plus the public inputs [c, d] this module's chunker then
// consumes, mirroring kappa.go's ProveAndVerifyVW0W1 prove-then-verify
// shape.
func ProveSumProduct(a, b int64) (compile.VerifyingKey, compile.Proof, []int64, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &SumProductCircuit{})
	if err != nil {
		return compile.VerifyingKey{}, compile.Proof{}, nil, fmt.Errorf("fixture: compile circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return compile.VerifyingKey{}, compile.Proof{}, nil, fmt.Errorf("fixture: groth16 setup: %w", err)
	}

	c := a + b
	d := a * b
	assignment := &SumProductCircuit{A: a, B: b, C: c, D: d}
	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return compile.VerifyingKey{}, compile.Proof{}, nil, fmt.Errorf("fixture: new witness: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, fullWitness)
	if err != nil {
		return compile.VerifyingKey{}, compile.Proof{}, nil, fmt.Errorf("fixture: prove: %w", err)
	}

	publicWitness, err := fullWitness.Public()
	if err != nil {
		return compile.VerifyingKey{}, compile.Proof{}, nil, fmt.Errorf("fixture: public witness: %w", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		return compile.VerifyingKey{}, compile.Proof{}, nil, fmt.Errorf("fixture: gnark verify (sanity check): %w", err)
	}

	chunkVK, err := toChunkVK(vk)
	if err != nil {
		return compile.VerifyingKey{}, compile.Proof{}, nil, fmt.Errorf("fixture: convert vk: %w", err)
	}
	chunkProof, err := toChunkProof(proof)
	if err != nil {
		return compile.VerifyingKey{}, compile.Proof{}, nil, fmt.Errorf("fixture: convert proof: %w", err)
	}

	return chunkVK, chunkProof, []int64{c, d}, nil
}

// toChunkVK type-asserts to the concrete bn254 verifying key, the same
// pattern export.go's exportVKBLS uses against *groth16bls.VerifyingKey.
func toChunkVK(vk groth16.VerifyingKey) (compile.VerifyingKey, error) {
	concrete, ok := vk.(*groth16bn254.VerifyingKey)
	if !ok {
		return compile.VerifyingKey{}, fmt.Errorf("fixture: verifying key is not a bn254 key (got %T)", vk)
	}
	ic := make([]fields.G1Affine, len(concrete.G1.K))
	copy(ic, concrete.G1.K)
	return compile.VerifyingKey{
		Alpha: concrete.G1.Alpha,
		Beta:  concrete.G2.Beta,
		Gamma: concrete.G2.Gamma,
		Delta: concrete.G2.Delta,
		IC:    ic,
	}, nil
}

// toChunkProof mirrors export.go's exportProofBLS against
// *groth16bls.Proof.
func toChunkProof(proof groth16.Proof) (compile.Proof, error) {
	concrete, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return compile.Proof{}, fmt.Errorf("fixture: proof is not a bn254 proof (got %T)", proof)
	}
	return compile.Proof{A: concrete.Ar, B: concrete.Bs, C: concrete.Krs}, nil
}

// PublicInputsAsScalars converts the fixture's plain int64 public
// inputs to fields.Scalar, the representation internal/compile's vk_x
// folding expects.
func PublicInputsAsScalars(values []int64) []fields.G1ScalarLike {
	out := make([]fields.G1ScalarLike, len(values))
	for i, v := range values {
		var e fr.Element
		if v < 0 {
			e.SetInt64(v)
		} else {
			e.SetUint64(uint64(v))
		}
		out[i] = fields.Scalar(e)
	}
	return out
}
