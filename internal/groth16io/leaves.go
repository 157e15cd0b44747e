// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package groth16io

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/logical-mechanism/groth16chunk/internal/assert"
	"github.com/logical-mechanism/groth16chunk/internal/ots"
	"github.com/logical-mechanism/groth16chunk/internal/stackvm"
)

// LeafJSON is one compiled tap leaf's persisted form: its id and its
// script, opaque-encoded since internal/stackvm's Op sequence is this
// module's own detail, not a public wire format spec.md fixes.
type LeafJSON struct {
	ID         string `json:"id"`
	ScriptHex  string `json:"script_hex"`
	ScriptSize int    `json:"script_size"`
}

// WriteLeaves persists leaves to dir/leaves.json, matching §6.3's
// "one file per compiled verifier" persistence shape.
func WriteLeaves(dir string, leaves []assert.Leaf) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("groth16io: mkdir %s: %w", dir, err)
	}
	out := make([]LeafJSON, len(leaves))
	for i, l := range leaves {
		raw := l.Script.Serialize()
		out[i] = LeafJSON{ID: l.ID, ScriptHex: hex.EncodeToString(raw), ScriptSize: len(l.Script)}
	}
	return writeJSON(filepath.Join(dir, "leaves.json"), out)
}

// ReadLeaves reverses WriteLeaves.
func ReadLeaves(dir string) ([]assert.Leaf, error) {
	var in []LeafJSON
	if err := readJSON(filepath.Join(dir, "leaves.json"), &in); err != nil {
		return nil, err
	}
	out := make([]assert.Leaf, len(in))
	for i, l := range in {
		raw, err := hex.DecodeString(l.ScriptHex)
		if err != nil {
			return nil, fmt.Errorf("groth16io: leaf %d: %w", i, err)
		}
		script, err := stackvm.Deserialize(raw)
		if err != nil {
			return nil, fmt.Errorf("groth16io: leaf %d: %w", i, err)
		}
		out[i] = assert.Leaf{ID: l.ID, Script: script}
	}
	return out, nil
}

// AssertionsJSON is the persisted, signed assertion set: the raw
// commitments plus one hex-encoded signature per entry, mirroring
// g16.rs's write_asserts_to_file / read_asserts_from_file.
type AssertionsJSON struct {
	Pubs     []string `json:"pubs"`
	Fqs      []string `json:"fqs"`
	Hashes   []string `json:"hashes"`
	PubSigs  []string `json:"pub_sigs"`
	FqSigs   []string `json:"fq_sigs"`
	HashSigs []string `json:"hash_sigs"`
}

// WriteAssertions persists sa to dir/assertions.json.
func WriteAssertions(dir string, sa assert.SignedAssertions) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("groth16io: mkdir %s: %w", dir, err)
	}
	out := AssertionsJSON{
		Pubs:     hexSlice32(sa.Assertions.Pubs),
		Fqs:      hexSlice32(sa.Assertions.Fqs),
		Hashes:   hexSlice20(sa.Assertions.Hashes),
		PubSigs:  hexSigs(sa.PubSigs),
		FqSigs:   hexSigs(sa.FqSigs),
		HashSigs: hexSigs(sa.HashSigs),
	}
	return writeJSON(filepath.Join(dir, "assertions.json"), out)
}

// ReadAssertions reverses WriteAssertions.
func ReadAssertions(dir string) (assert.SignedAssertions, error) {
	var in AssertionsJSON
	if err := readJSON(filepath.Join(dir, "assertions.json"), &in); err != nil {
		return assert.SignedAssertions{}, err
	}
	pubs, err := parseSlice32(in.Pubs)
	if err != nil {
		return assert.SignedAssertions{}, fmt.Errorf("groth16io: pubs: %w", err)
	}
	fqs, err := parseSlice32(in.Fqs)
	if err != nil {
		return assert.SignedAssertions{}, fmt.Errorf("groth16io: fqs: %w", err)
	}
	hashes, err := parseSlice20(in.Hashes)
	if err != nil {
		return assert.SignedAssertions{}, fmt.Errorf("groth16io: hashes: %w", err)
	}
	pubSigs, err := parseSigs(in.PubSigs)
	if err != nil {
		return assert.SignedAssertions{}, fmt.Errorf("groth16io: pub_sigs: %w", err)
	}
	fqSigs, err := parseSigs(in.FqSigs)
	if err != nil {
		return assert.SignedAssertions{}, fmt.Errorf("groth16io: fq_sigs: %w", err)
	}
	hashSigs, err := parseSigs(in.HashSigs)
	if err != nil {
		return assert.SignedAssertions{}, fmt.Errorf("groth16io: hash_sigs: %w", err)
	}
	return assert.SignedAssertions{
		Assertions: assert.Assertions{Pubs: pubs, Fqs: fqs, Hashes: hashes},
		PubSigs:    pubSigs,
		FqSigs:     fqSigs,
		HashSigs:   hashSigs,
	}, nil
}

func hexSlice32(vs [][32]byte) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = hex.EncodeToString(v[:])
	}
	return out
}

func hexSlice20(vs [][20]byte) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = hex.EncodeToString(v[:])
	}
	return out
}

func hexSigs(sigs []ots.Signature) []string {
	out := make([]string, len(sigs))
	for i, s := range sigs {
		b, _ := json.Marshal(s)
		out[i] = hex.EncodeToString(b)
	}
	return out
}

func parseSlice32(in []string) ([][32]byte, error) {
	out := make([][32]byte, len(in))
	for i, s := range in {
		raw, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("entry %d: want 32 bytes, got %d", i, len(raw))
		}
		copy(out[i][:], raw)
	}
	return out, nil
}

func parseSlice20(in []string) ([][20]byte, error) {
	out := make([][20]byte, len(in))
	for i, s := range in {
		raw, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if len(raw) != 20 {
			return nil, fmt.Errorf("entry %d: want 20 bytes, got %d", i, len(raw))
		}
		copy(out[i][:], raw)
	}
	return out, nil
}

func parseSigs(in []string) ([]ots.Signature, error) {
	out := make([]ots.Signature, len(in))
	for i, s := range in {
		raw, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if err := json.Unmarshal(raw, &out[i]); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}
