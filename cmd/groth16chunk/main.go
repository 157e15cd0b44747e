// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// main.go
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/logical-mechanism/groth16chunk/internal/assert"
	"github.com/logical-mechanism/groth16chunk/internal/compile"
	"github.com/logical-mechanism/groth16chunk/internal/element"
	"github.com/logical-mechanism/groth16chunk/internal/fields"
	"github.com/logical-mechanism/groth16chunk/internal/groth16io"
	"github.com/logical-mechanism/groth16chunk/internal/logging"
	"github.com/logical-mechanism/groth16chunk/internal/ots"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "usage: groth16chunk <compile|assert|sign|verify> [flags]")
		return 2
	}

	switch args[0] {
	case "compile":
		return runCompile(args[1:], stdout, stderr)
	case "assert":
		return runAssert(args[1:], stdout, stderr)
	case "sign":
		return runSign(args[1:], stdout, stderr)
	case "verify":
		return runVerify(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "error: unknown subcommand %q\n", args[0])
		return 2
	}
}

// runCompile reads a verifying key and public inputs from -vk-dir,
// compiles them into tap-leaf scripts, and writes the leaves to
// -out, matching SPEC_FULL.md §6's "compile" subcommand.
func runCompile(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("compile", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var vkDir, outDir string
	var verbose bool
	cmd.StringVar(&vkDir, "vk-dir", "", "directory containing vk.json and public.json")
	cmd.StringVar(&outDir, "out", "out", "output directory for leaves.json")
	cmd.BoolVar(&verbose, "v", false, "verbose logging")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if vkDir == "" {
		fmt.Fprintln(stderr, "error: -vk-dir is required")
		cmd.Usage()
		return 2
	}

	vk, err := groth16io.ReadVK(vkDir)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	publicStrs, err := groth16io.ReadPublic(vkDir)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	publics := make([]fields.G1ScalarLike, len(publicStrs))
	for i, s := range publicStrs {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			fmt.Fprintln(stderr, "error: parsing public input", i, ":", err)
			return 1
		}
		publics[i] = fields.NewScalar(uint64(v))
	}

	logger := logging.New(stderr, verbose)
	out, err := compile.CompileVerifier(context.Background(), vk, publics, logger)
	if err != nil {
		fmt.Fprintln(stderr, "FAIL:", err)
		return 1
	}

	if err := groth16io.WriteLeaves(outDir, out.Leaves); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	fmt.Fprintf(stdout, "SUCCESS: compiled %d leaves to %s\n", len(out.Leaves), outDir)
	return 0
}

// runAssert checks that -proof-dir holds a readable proof, commits to
// its public inputs (no Fq or hash entries are derived), signs them
// with a fresh one-time key set, and writes the signed assertions to
// -out. The key set's public keys are not written.
func runAssert(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("assert", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var proofDir, outDir string
	cmd.StringVar(&proofDir, "proof-dir", "", "directory containing proof.json and public.json")
	cmd.StringVar(&outDir, "out", "out", "output directory for assertions.json")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if proofDir == "" {
		fmt.Fprintln(stderr, "error: -proof-dir is required")
		cmd.Usage()
		return 2
	}

	if _, err := groth16io.ReadProof(proofDir); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	publicStrs, err := groth16io.ReadPublic(proofDir)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	a := assertionsFromProof(publicStrs)
	ks := ots.NewKeySet()
	sa, err := assert.GenerateProofAssertions(a, ks, idFor)
	if err != nil {
		fmt.Fprintln(stderr, "FAIL:", err)
		return 1
	}

	if err := groth16io.WriteAssertions(outDir, sa); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	fmt.Fprintf(stdout, "SUCCESS: signed %d assertions to %s\n", len(a.Pubs)+len(a.Fqs)+len(a.Hashes), outDir)
	return 0
}

// runSign signs the BLAKE3-160 fingerprint of a single hex-encoded
// value with a freshly generated one-time key and prints the
// signature, useful for scripting custom commitment layouts without
// going through the full assert pipeline.
func runSign(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("sign", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var value string
	cmd.StringVar(&value, "value", "", "hex-encoded 32-byte value to fingerprint and sign")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if value == "" {
		fmt.Fprintln(stderr, "error: -value is required")
		cmd.Usage()
		return 2
	}

	raw, err := decodeHex(value)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	sk, _, err := ots.Generate()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	digest := element.Fingerprint160(raw)
	sig := ots.Sign(sk, digest)
	fmt.Fprintf(stdout, "%x\n", sig)
	return 0
}

// runVerify reads compiled leaves and signed assertions, re-derives
// the witness for each leaf from the assertions, and reports the first
// leaf (if any) whose script rejects its witness.
func runVerify(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var leavesDir, assertDir string
	cmd.StringVar(&leavesDir, "leaves-dir", "", "directory containing leaves.json")
	cmd.StringVar(&assertDir, "assert-dir", "", "directory containing assertions.json")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if leavesDir == "" || assertDir == "" {
		fmt.Fprintln(stderr, "error: -leaves-dir and -assert-dir are required")
		cmd.Usage()
		return 2
	}

	leaves, err := groth16io.ReadLeaves(leavesDir)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	sa, err := groth16io.ReadAssertions(assertDir)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	ks := ots.NewKeySet()
	if err := reassignKeysFromAssertions(ks, sa); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	witnessFor := assert.WitnessForAssertions(sa)
	fault, err := assert.ValidateAssertions(sa, ks, idFor, leaves, witnessFor)
	if err != nil {
		fmt.Fprintln(stderr, "FAIL:", err)
		return 1
	}
	if fault != nil {
		fmt.Fprintf(stdout, "DISPROVABLE: leaf %d (%s)\n", fault.LeafIndex, leaves[fault.LeafIndex].ID)
		return 0
	}

	fmt.Fprintln(stdout, "SUCCESS: no disprovable leaf found")
	return 0
}

func idFor(kind string, index int) string {
	return fmt.Sprintf("%s-%d", kind, index)
}

func assertionsFromProof(publicStrs []string) assert.Assertions {
	pubs := make([][32]byte, len(publicStrs))
	for i, s := range publicStrs {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		var buf [32]byte
		for j := 0; j < 8; j++ {
			buf[31-j] = byte(v >> (8 * j))
		}
		pubs[i] = buf
	}
	return assert.Assertions{Pubs: pubs}
}

func reassignKeysFromAssertions(ks *ots.KeySet, sa assert.SignedAssertions) error {
	assign := func(kind string, n int) error {
		for i := 0; i < n; i++ {
			if _, _, err := ks.Assign(idFor(kind, i)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := assign("pub", len(sa.Assertions.Pubs)); err != nil {
		return err
	}
	if err := assign("fq", len(sa.Assertions.Fqs)); err != nil {
		return err
	}
	return assign("hash", len(sa.Assertions.Hashes))
}

func decodeHex(s string) ([]byte, error) {
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cli: decode hex: %w", err)
	}
	return out, nil
}
