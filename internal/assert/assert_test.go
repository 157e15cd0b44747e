// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package assert

import (
	"fmt"
	"testing"

	"github.com/logical-mechanism/groth16chunk/internal/ots"
	"github.com/logical-mechanism/groth16chunk/internal/stackvm"
)

func idFor(kind string, i int) string { return fmt.Sprintf("%s-%d", kind, i) }

func sampleAssertions() Assertions {
	var p [32]byte
	p[0] = 1
	var f [32]byte
	f[0] = 2
	var h [20]byte
	h[0] = 3
	return Assertions{Pubs: [][32]byte{p}, Fqs: [][32]byte{f}, Hashes: [][20]byte{h}}
}

func TestGenerateAndValidateAssertionsSucceeds(t *testing.T) {
	ks := ots.NewKeySet()
	a := sampleAssertions()

	sa, err := GenerateProofAssertions(a, ks, idFor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	leaves := []Leaf{{ID: "leaf-0", Script: stackvm.Script{}.Push([]byte{7}).Op(stackvm.OpEqualVerify)}}
	witnessFor := func(int) [][]byte { return [][]byte{{7}} }

	fault, err := ValidateAssertions(sa, ks, idFor, leaves, witnessFor)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if fault != nil {
		t.Fatalf("expected no fault, got %+v", fault)
	}
}

func TestValidateAssertionsFindsFailingLeaf(t *testing.T) {
	ks := ots.NewKeySet()
	a := sampleAssertions()

	sa, err := GenerateProofAssertions(a, ks, idFor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	leaves := []Leaf{
		{ID: "leaf-0", Script: stackvm.Script{}.Push([]byte{7}).Op(stackvm.OpEqualVerify)},
		{ID: "leaf-1", Script: stackvm.Script{}.Push([]byte{9}).Op(stackvm.OpEqualVerify)},
	}
	witnessFor := func(i int) [][]byte {
		if i == 1 {
			return [][]byte{{0}}
		}
		return [][]byte{{7}}
	}

	fault, err := ValidateAssertions(sa, ks, idFor, leaves, witnessFor)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if fault == nil || fault.LeafIndex != 1 {
		t.Fatalf("expected fault at leaf 1, got %+v", fault)
	}

	disproveLeaf, witness, err := GenerateDisproveScripts(leaves, *fault)
	if err != nil {
		t.Fatalf("generate disprove scripts: %v", err)
	}
	if disproveLeaf.ID != "leaf-1" || len(witness) != 1 {
		t.Fatalf("unexpected disprove payload: %+v %v", disproveLeaf, witness)
	}
}

func TestValidateAssertionsRejectsTamperedSignature(t *testing.T) {
	ks := ots.NewKeySet()
	a := sampleAssertions()

	sa, err := GenerateProofAssertions(a, ks, idFor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	sa.Assertions.Pubs[0][1] = 0xFF // tamper after signing

	_, err = ValidateAssertions(sa, ks, idFor, nil, func(int) [][]byte { return nil })
	if err == nil {
		t.Fatalf("expected signature verification error")
	}
}
