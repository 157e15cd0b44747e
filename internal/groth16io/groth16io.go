// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package groth16io persists verifying keys, proofs, public inputs,
// and compiled tap-leaf/assertion artifacts as JSON, adapted from the
// teacher's export.go (VKJSON/ProofJSON/PublicJSON over BLS12-381) to
// BN254 and to the tap-leaf/assertion layout spec.md §6.3 describes.
package groth16io

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/logical-mechanism/groth16chunk/internal/compile"
	"github.com/logical-mechanism/groth16chunk/internal/fields"
)

// VKJSON is the hex-encoded, compressed-point wire form of a verifying
// key, mirroring export.go's VKJSON shape one-for-one, field names
// included, but over BN254 instead of BLS12-381.
type VKJSON struct {
	VkAlpha string   `json:"vk_alpha"`
	VkBeta  string   `json:"vk_beta"`
	VkGamma string   `json:"vk_gamma"`
	VkDelta string   `json:"vk_delta"`
	VkIC    []string `json:"vk_ic"`
	NPublic int      `json:"n_public"`
}

// ProofJSON is the hex-encoded, compressed-point wire form of a proof.
type ProofJSON struct {
	PiA string `json:"pi_a"`
	PiB string `json:"pi_b"`
	PiC string `json:"pi_c"`
}

// PublicJSON is the decimal string wire form of a public witness.
type PublicJSON struct {
	Inputs []string `json:"inputs"`
}

// WriteVK hex-encodes vk and writes it to dir/vk.json, matching
// export.go's ExportAll layout (one JSON file per artifact,
// os.MkdirAll first).
func WriteVK(dir string, vk compile.VerifyingKey) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("groth16io: mkdir %s: %w", dir, err)
	}
	out := VKJSON{
		VkAlpha: g1Hex(vk.Alpha),
		VkBeta:  g2Hex(vk.Beta),
		VkGamma: g2Hex(vk.Gamma),
		VkDelta: g2Hex(vk.Delta),
		NPublic: len(vk.IC) - 1,
	}
	out.VkIC = make([]string, len(vk.IC))
	for i, ic := range vk.IC {
		out.VkIC[i] = g1Hex(ic)
	}
	return writeJSON(filepath.Join(dir, "vk.json"), out)
}

// ReadVK reverses WriteVK.
func ReadVK(dir string) (compile.VerifyingKey, error) {
	var in VKJSON
	if err := readJSON(filepath.Join(dir, "vk.json"), &in); err != nil {
		return compile.VerifyingKey{}, err
	}
	var vk compile.VerifyingKey
	var err error
	if vk.Alpha, err = g1FromHex(in.VkAlpha); err != nil {
		return compile.VerifyingKey{}, fmt.Errorf("groth16io: vk_alpha: %w", err)
	}
	if vk.Beta, err = g2FromHex(in.VkBeta); err != nil {
		return compile.VerifyingKey{}, fmt.Errorf("groth16io: vk_beta: %w", err)
	}
	if vk.Gamma, err = g2FromHex(in.VkGamma); err != nil {
		return compile.VerifyingKey{}, fmt.Errorf("groth16io: vk_gamma: %w", err)
	}
	if vk.Delta, err = g2FromHex(in.VkDelta); err != nil {
		return compile.VerifyingKey{}, fmt.Errorf("groth16io: vk_delta: %w", err)
	}
	vk.IC = make([]fields.G1Affine, len(in.VkIC))
	for i, h := range in.VkIC {
		if vk.IC[i], err = g1FromHex(h); err != nil {
			return compile.VerifyingKey{}, fmt.Errorf("groth16io: vk_ic[%d]: %w", i, err)
		}
	}
	return vk, nil
}

// WriteProof hex-encodes proof and writes it to dir/proof.json.
func WriteProof(dir string, proof compile.Proof) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("groth16io: mkdir %s: %w", dir, err)
	}
	out := ProofJSON{PiA: g1Hex(proof.A), PiB: g2Hex(proof.B), PiC: g1Hex(proof.C)}
	return writeJSON(filepath.Join(dir, "proof.json"), out)
}

// ReadProof reverses WriteProof.
func ReadProof(dir string) (compile.Proof, error) {
	var in ProofJSON
	if err := readJSON(filepath.Join(dir, "proof.json"), &in); err != nil {
		return compile.Proof{}, err
	}
	var proof compile.Proof
	var err error
	if proof.A, err = g1FromHex(in.PiA); err != nil {
		return compile.Proof{}, fmt.Errorf("groth16io: pi_a: %w", err)
	}
	if proof.B, err = g2FromHex(in.PiB); err != nil {
		return compile.Proof{}, fmt.Errorf("groth16io: pi_b: %w", err)
	}
	if proof.C, err = g1FromHex(in.PiC); err != nil {
		return compile.Proof{}, fmt.Errorf("groth16io: pi_c: %w", err)
	}
	return proof, nil
}

// WritePublic writes a decimal-string public witness to dir/public.json.
func WritePublic(dir string, inputs []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("groth16io: mkdir %s: %w", dir, err)
	}
	return writeJSON(filepath.Join(dir, "public.json"), PublicJSON{Inputs: inputs})
}

// ReadPublic reverses WritePublic.
func ReadPublic(dir string) ([]string, error) {
	var in PublicJSON
	if err := readJSON(filepath.Join(dir, "public.json"), &in); err != nil {
		return nil, err
	}
	return in.Inputs, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("groth16io: create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("groth16io: encode %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("groth16io: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("groth16io: unmarshal %s: %w", path, err)
	}
	return nil
}

func g1Hex(p fields.G1Affine) string {
	b := p.Bytes()
	return hex.EncodeToString(b[:])
}

func g1FromHex(s string) (fields.G1Affine, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fields.G1Affine{}, err
	}
	var p bn254.G1Affine
	if _, err := p.SetBytes(raw); err != nil {
		return fields.G1Affine{}, err
	}
	return p, nil
}

func g2Hex(p fields.G2Affine) string {
	b := p.Bytes()
	return hex.EncodeToString(b[:])
}

func g2FromHex(s string) (fields.G2Affine, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fields.G2Affine{}, err
	}
	var p bn254.G2Affine
	if _, err := p.SetBytes(raw); err != nil {
		return fields.G2Affine{}, err
	}
	return p, nil
}
