// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package element

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressedStateRoundTripHash(t *testing.T) {
	var h [20]byte
	for i := range h {
		h[i] = byte(i)
	}
	c := NewHash(h)
	got, err := Deserialize(c.Serialize())
	require.NoError(t, err)
	require.Equal(t, DataTypeHash, got.Kind)
	require.Equal(t, h, got.Hash)
}

func TestCompressedStateRoundTripU256(t *testing.T) {
	var v [32]byte
	for i := range v {
		v[i] = byte(255 - i)
	}
	c := NewU256(v)
	got, err := Deserialize(c.Serialize())
	require.NoError(t, err)
	require.Equal(t, DataTypeU256, got.Kind)
	require.Equal(t, v, got.U256)
}

func TestDeserializeLengthMismatch(t *testing.T) {
	_, err := Deserialize(make([]byte, 7))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestNibblesRoundTrip(t *testing.T) {
	in := []byte{0xAB, 0xCD, 0x01}
	n := Nibbles(in)
	require.Len(t, n, len(in)*2)

	back, err := NibblesToBytes(n)
	require.NoError(t, err)
	require.Equal(t, in, back)
}

func TestNibblesToBytesOddLength(t *testing.T) {
	_, err := NibblesToBytes([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint160([]byte("the quick brown fox"))
	b := Fingerprint160([]byte("the quick brown fox"))
	require.Equal(t, a, b)

	c := Fingerprint160([]byte("the quick brown fo"))
	require.NotEqual(t, a, c)
}
