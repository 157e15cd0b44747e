// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package ots

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	sk, pk, err := Generate()
	require.NoError(t, err)

	var msg [20]byte
	for i := range msg {
		msg[i] = byte(i * 7)
	}
	sig := Sign(sk, msg)
	require.NoError(t, Verify(pk, msg, sig))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	sk, pk, err := Generate()
	require.NoError(t, err)

	var msg, tampered [20]byte
	tampered[0] = 1
	sig := Sign(sk, msg)
	require.ErrorIs(t, Verify(pk, tampered, sig), ErrOneTimeSignatureInvalid)
}

func TestKeySetAssignmentIsStableAndOrdered(t *testing.T) {
	ks := NewKeySet()
	_, pkA, err := ks.Assign("a")
	require.NoError(t, err)

	_, _, err = ks.Assign("b")
	require.NoError(t, err)

	_, pkA2, err := ks.Assign("a")
	require.NoError(t, err)
	require.Equal(t, pkA, pkA2)

	order := ks.Order()
	require.Equal(t, []string{"a", "b"}, order)
}
