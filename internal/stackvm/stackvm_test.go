// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package stackvm

import "testing"

func TestEqualVerifySucceeds(t *testing.T) {
	s := Script{}.Push([]byte{1, 2, 3}).Op(OpEqualVerify)
	res := Execute(s, [][]byte{{1, 2, 3}})
	if !res.Success {
		t.Fatalf("expected success, got err=%v", res.Err)
	}
}

func TestEqualVerifyFails(t *testing.T) {
	s := Script{}.Push([]byte{9, 9, 9}).Op(OpEqualVerify)
	res := Execute(s, [][]byte{{1, 2, 3}})
	if res.Success {
		t.Fatalf("expected failure")
	}
}

func TestHash160Opcode(t *testing.T) {
	s := Script{}.Op(OpHash160)
	res := Execute(s, [][]byte{[]byte("hello")})
	if !res.Success {
		t.Fatalf("expected success, got err=%v", res.Err)
	}
	if len(res.Stack) != 1 || len(res.Stack[0]) != 20 {
		t.Fatalf("expected one 20-byte item on stack, got %v", res.Stack)
	}
}

func TestIfElseBranching(t *testing.T) {
	s := Script{}.
		Push([]byte{1}).
		Op(OpIf).
		Push([]byte("yes")).
		Op(OpElse).
		Push([]byte("no")).
		Op(OpEndIf)
	res := Execute(s, nil)
	if !res.Success || len(res.Stack) != 1 || string(res.Stack[0]) != "yes" {
		t.Fatalf("expected [yes], got %v err=%v", res.Stack, res.Err)
	}

	s2 := Script{}.
		Push([]byte{0}).
		Op(OpIf).
		Push([]byte("yes")).
		Op(OpElse).
		Push([]byte("no")).
		Op(OpEndIf)
	res2 := Execute(s2, nil)
	if !res2.Success || len(res2.Stack) != 1 || string(res2.Stack[0]) != "no" {
		t.Fatalf("expected [no], got %v err=%v", res2.Stack, res2.Err)
	}
}

func TestAltStackRoundTrip(t *testing.T) {
	s := Script{}.
		Push([]byte{7}).
		Op(OpToAltStack).
		Push([]byte{7}).
		Op(OpFromAltStack).
		Op(OpEqualVerify)
	res := Execute(s, nil)
	if !res.Success {
		t.Fatalf("expected success, got err=%v", res.Err)
	}
}

func TestStackUnderflow(t *testing.T) {
	res := Execute(Script{}.Op(OpEqual), nil)
	if res.Success {
		t.Fatalf("expected underflow failure")
	}
}
