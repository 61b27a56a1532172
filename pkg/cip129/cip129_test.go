package cip129

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keyHash = bytes.Repeat([]byte{0xab}, hashLen)

const txHash = "0b19476e40bbbb5e1e8ce153523762e2b6859e7ecacbaf06eae0ee6a447e79b9"

func TestNormalizeDRepID_AllEncodingsAgree(t *testing.T) {
	legacy, err := encode(hrpDRep, keyHash)
	require.NoError(t, err)
	cip129, err := encode(hrpDRep, append([]byte{headerDRepKey}, keyHash...))
	require.NoError(t, err)

	inputs := []string{
		legacy,
		cip129,
		strings.ToUpper(cip129),
		"  " + cip129 + " ",
		strings.Repeat("ab", hashLen),
		"22" + strings.Repeat("ab", hashLen),
	}
	for _, in := range inputs {
		got, err := NormalizeDRepID(in)
		require.NoError(t, err, in)
		assert.Equal(t, cip129, got, in)
	}
	assert.NotEqual(t, legacy, cip129)
}

func TestParseDRep_Script(t *testing.T) {
	legacy, err := encode(hrpDRepScript, keyHash)
	require.NoError(t, err)

	cred, err := ParseDRep(legacy)
	require.NoError(t, err)
	assert.True(t, cred.Script)
	assert.Equal(t, strings.Repeat("ab", hashLen), cred.HashHex())

	id, err := cred.DRepID()
	require.NoError(t, err)
	again, err := ParseDRep(id)
	require.NoError(t, err)
	assert.True(t, again.Script)
	assert.Equal(t, cred.Hash, again.Hash)

	fromHex, err := ParseDRep("23" + strings.Repeat("ab", hashLen))
	require.NoError(t, err)
	assert.True(t, fromHex.Script)
}

func TestParseDRep_Invalid(t *testing.T) {
	badHeader, err := encode(hrpDRep, append([]byte{0x99}, keyHash...))
	require.NoError(t, err)

	for _, in := range []string{"", "drep1notbech32", "zz", "abcd", badHeader} {
		_, err := ParseDRep(in)
		assert.ErrorIs(t, err, ErrInvalidIdentifier, in)
	}
}

func TestNormalizeDRepIDOrOriginal_FallsBack(t *testing.T) {
	assert.Equal(t, "not-a-drep", NormalizeDRepIDOrOriginal("not-a-drep"))
}

func TestParseAction(t *testing.T) {
	for _, in := range []string{txHash + "#3", txHash + ":3", strings.ToUpper(txHash) + "#3"} {
		ref, err := ParseAction(in)
		require.NoError(t, err, in)
		assert.Equal(t, ActionRef{TxHash: txHash, Index: 3}, ref)
		assert.Equal(t, txHash+"#3", ref.String())
	}
}

func TestActionRef_Bech32RoundTrip(t *testing.T) {
	for _, idx := range []uint32{0, 3, 255, 300, 70000} {
		ref := ActionRef{TxHash: txHash, Index: idx}
		enc, err := ref.Bech32()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(enc, "gov_action1"))

		back, err := ParseAction(enc)
		require.NoError(t, err)
		assert.Equal(t, ref, back)
	}
}

func TestParseAction_Invalid(t *testing.T) {
	for _, in := range []string{"", txHash, "abc#1", txHash + "#x", txHash + "#-1", "gov_action1xyz"} {
		_, err := ParseAction(in)
		assert.Error(t, err, in)
	}
}

func TestPoolID_RoundTrip(t *testing.T) {
	hash := strings.Repeat("cd", hashLen)

	id := PoolID(hash)
	assert.True(t, strings.HasPrefix(id, "pool1"))

	back, err := PoolHash(id)
	require.NoError(t, err)
	assert.Equal(t, hash, back)

	back, err = PoolHash(strings.ToUpper(hash))
	require.NoError(t, err)
	assert.Equal(t, hash, back)

	assert.Equal(t, "xyz", PoolID("xyz"))
	_, err = PoolHash("pool1xyz")
	assert.Error(t, err)
}
