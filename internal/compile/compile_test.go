// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package compile_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/logical-mechanism/groth16chunk/internal/compile"
	"github.com/logical-mechanism/groth16chunk/internal/fields"
	"github.com/logical-mechanism/groth16chunk/internal/fixture"
)

func TestCompileVerifierProducesLeaves(t *testing.T) {
	vk, _, publics, err := fixture.ProveSumProduct(5, -5)
	if err != nil {
		t.Fatalf("prove sum product: %v", err)
	}

	out, err := compile.CompileVerifier(context.Background(), vk, fixture.PublicInputsAsScalars(publics), zerolog.Nop())
	if err != nil {
		t.Fatalf("CompileVerifier: %v", err)
	}
	if len(out.Leaves) == 0 {
		t.Fatalf("expected at least one compiled leaf")
	}
	for i, leaf := range out.Leaves {
		if leaf.ID == "" {
			t.Fatalf("leaf %d missing id", i)
		}
	}
}

func TestCompileVerifierRejectsMismatchedICLength(t *testing.T) {
	vk := compile.VerifyingKey{IC: []fields.G1Affine{{}}}
	_, err := compile.CompileVerifier(context.Background(), vk, fixtureScalars(5, 6), zerolog.Nop())
	if err == nil {
		t.Fatalf("expected IC length mismatch error")
	}
}

func fixtureScalars(values ...int64) []fields.G1ScalarLike {
	out := make([]fields.G1ScalarLike, len(values))
	for i, v := range values {
		out[i] = fields.NewScalar(uint64(v))
	}
	return out
}
