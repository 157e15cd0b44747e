// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package stackvm implements the minimal postfix stack machine a
// tap-leaf script runs against: push immediates, push witness items,
// compare, hash, and branch. It is a stand-in for the real Bitcoin
// Script interpreter the compiler targets — spec.md treats that
// interpreter as an external collaborator, so this package only needs
// to execute the opcode subset the chunk algebra emits, closely enough
// to let this module's own tests assert a leaf's success or failure.
package stackvm

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"
)

// Op is one instruction in a Script.
type Op struct {
	Code OpCode
	Arg  []byte // literal payload for OpPush; unused otherwise
}

// OpCode enumerates the instructions this VM understands.
type OpCode int

const (
	// OpPush pushes Op.Arg onto the main stack.
	OpPush OpCode = iota
	// OpDup duplicates the top of the main stack.
	OpDup
	// OpEqual pops two items and pushes a 1-byte boolean for equality.
	OpEqual
	// OpEqualVerify pops two items and fails the script if unequal.
	OpEqualVerify
	// OpCat pops two items and pushes their concatenation.
	OpCat
	// OpHash160 pops one item and pushes its BLAKE3-160 fingerprint
	// (see element.Fingerprint160 — this opcode reimplements the same
	// truncation rule locally rather than importing element).
	OpHash160
	// OpToAltStack moves the top of the main stack to the alt stack.
	OpToAltStack
	// OpFromAltStack moves the top of the alt stack to the main stack.
	OpFromAltStack
	// OpVerify fails the script unless the top of the stack is truthy
	// (non-empty, non-zero), then pops it.
	OpVerify
	// OpIf/OpElse/OpEndIf bracket a conditional branch, consuming a
	// boolean from the main stack at OpIf.
	OpIf
	OpElse
	OpEndIf
)

// Script is an ordered list of instructions — a single tap leaf.
type Script []Op

// Push appends an OpPush of b.
func (s Script) Push(b []byte) Script { return append(s, Op{Code: OpPush, Arg: b}) }

// Op appends a zero-argument instruction.
func (s Script) Op(code OpCode) Script { return append(s, Op{Code: code}) }

// Serialize encodes a Script as a flat byte sequence: one byte of
// opcode, then (for OpPush only) a 2-byte big-endian length and the
// argument bytes. This is this module's own wire format for
// persisting compiled leaves (spec.md §6.3 leaves the leaf-script
// encoding itself as an implementation detail of the compiler).
func (s Script) Serialize() []byte {
	out := make([]byte, 0, len(s)*2)
	for _, op := range s {
		out = append(out, byte(op.Code))
		if op.Code == OpPush {
			n := len(op.Arg)
			out = append(out, byte(n>>8), byte(n))
			out = append(out, op.Arg...)
		}
	}
	return out
}

// Deserialize reverses Serialize.
func Deserialize(b []byte) (Script, error) {
	var s Script
	for i := 0; i < len(b); {
		code := OpCode(b[i])
		i++
		if code == OpPush {
			if i+2 > len(b) {
				return nil, fmt.Errorf("stackvm: truncated push length at offset %d", i)
			}
			n := int(b[i])<<8 | int(b[i+1])
			i += 2
			if i+n > len(b) {
				return nil, fmt.Errorf("stackvm: truncated push argument at offset %d", i)
			}
			s = append(s, Op{Code: code, Arg: append([]byte{}, b[i:i+n]...)})
			i += n
			continue
		}
		s = append(s, Op{Code: code})
	}
	return s, nil
}

var (
	// ErrStackUnderflow is returned when an opcode needs more operands
	// than the stack currently holds.
	ErrStackUnderflow = errors.New("stackvm: stack underflow")
	// ErrVerifyFailed is returned by OpVerify/OpEqualVerify when the
	// checked condition does not hold — this is the "script fails"
	// signal the disprove protocol watches for.
	ErrVerifyFailed = errors.New("stackvm: verify failed")
	// ErrUnbalancedBranch is returned when OpElse/OpEndIf appear
	// without a matching OpIf.
	ErrUnbalancedBranch = errors.New("stackvm: unbalanced branch")
)

// Result is the outcome of executing a Script.
type Result struct {
	Success bool
	Stack   [][]byte
	Err     error
}

// Execute runs script against an initial witness (pushed in order,
// bottom to top, before the script's own instructions run), the same
// "witness then script" convention the original Rust test harness uses
// when it pushes hints ahead of running a compiled leaf.
func Execute(script Script, witness [][]byte) Result {
	main := append([][]byte{}, witness...)
	var alt [][]byte

	type branchFrame struct {
		executing bool
		taken     bool
	}
	var branches []branchFrame

	activeExec := func() bool {
		for _, b := range branches {
			if !b.executing {
				return false
			}
		}
		return true
	}

	pop := func() ([]byte, error) {
		if len(main) == 0 {
			return nil, ErrStackUnderflow
		}
		v := main[len(main)-1]
		main = main[:len(main)-1]
		return v, nil
	}

	for _, op := range script {
		switch op.Code {
		case OpIf:
			var top []byte
			var err error
			if activeExec() {
				top, err = pop()
				if err != nil {
					return Result{Success: false, Err: err}
				}
			}
			branches = append(branches, branchFrame{executing: activeExec() && isTruthy(top), taken: isTruthy(top)})
			continue
		case OpElse:
			if len(branches) == 0 {
				return Result{Success: false, Err: ErrUnbalancedBranch}
			}
			top := &branches[len(branches)-1]
			top.executing = !top.taken
			continue
		case OpEndIf:
			if len(branches) == 0 {
				return Result{Success: false, Err: ErrUnbalancedBranch}
			}
			branches = branches[:len(branches)-1]
			continue
		}

		if !activeExec() {
			continue
		}

		var err error
		switch op.Code {
		case OpPush:
			main = append(main, append([]byte{}, op.Arg...))
		case OpDup:
			if len(main) == 0 {
				err = ErrStackUnderflow
				break
			}
			main = append(main, append([]byte{}, main[len(main)-1]...))
		case OpEqual:
			var a, b []byte
			if a, err = pop(); err != nil {
				break
			}
			if b, err = pop(); err != nil {
				break
			}
			if bytes.Equal(a, b) {
				main = append(main, []byte{1})
			} else {
				main = append(main, []byte{0})
			}
		case OpEqualVerify:
			var a, b []byte
			if a, err = pop(); err != nil {
				break
			}
			if b, err = pop(); err != nil {
				break
			}
			if !bytes.Equal(a, b) {
				err = fmt.Errorf("%w: %x != %x", ErrVerifyFailed, a, b)
			}
		case OpCat:
			var a, b []byte
			if b, err = pop(); err != nil {
				break
			}
			if a, err = pop(); err != nil {
				break
			}
			main = append(main, append(append([]byte{}, a...), b...))
		case OpHash160:
			var a []byte
			if a, err = pop(); err != nil {
				break
			}
			full := blake3.Sum256(a)
			main = append(main, full[len(full)-20:])
		case OpToAltStack:
			var a []byte
			if a, err = pop(); err != nil {
				break
			}
			alt = append(alt, a)
		case OpFromAltStack:
			if len(alt) == 0 {
				err = ErrStackUnderflow
				break
			}
			a := alt[len(alt)-1]
			alt = alt[:len(alt)-1]
			main = append(main, a)
		case OpVerify:
			var a []byte
			if a, err = pop(); err != nil {
				break
			}
			if !isTruthy(a) {
				err = ErrVerifyFailed
			}
		default:
			err = fmt.Errorf("stackvm: unknown opcode %d", op.Code)
		}
		if err != nil {
			return Result{Success: false, Stack: main, Err: err}
		}
	}

	if len(branches) != 0 {
		return Result{Success: false, Err: ErrUnbalancedBranch}
	}
	return Result{Success: true, Stack: main}
}

func isTruthy(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return true
		}
	}
	return false
}
