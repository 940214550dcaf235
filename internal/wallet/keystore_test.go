package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliseHexKey(t *testing.T) {
	tests := map[string]string{
		"0xabc123":  "abc123",
		"0Xabc123":  "abc123",
		"abc123":    "abc123",
		"  0xabc  ": "abc",
		"0x":        "",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normaliseHexKey(in), in)
	}
}

func TestFileKeystoreRoundTrip(t *testing.T) {
	ks, err := OpenFileKeystore(t.TempDir(), "testpass")
	require.NoError(t, err)

	ref, err := ks.Store("alice", "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "w3dapp.alice", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, ks.Delete(ref), "deleting twice is fine")
}

func TestFileKeystoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ks, err := OpenFileKeystore(dir, "testpass")
	require.NoError(t, err)
	ref, err := ks.Store("bob", "0x01")
	require.NoError(t, err)

	again, err := OpenFileKeystore(dir, "testpass")
	require.NoError(t, err)
	got, err := again.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "01", got)
}

func TestNilRingKeystore(t *testing.T) {
	ks := &Keystore{}

	_, err := ks.Store("x", "0x01")
	assert.Error(t, err)
	_, err = ks.Retrieve("w3dapp.x")
	assert.Error(t, err)
	assert.NoError(t, ks.Delete("w3dapp.x"))
}

func TestInMemoryKeystore(t *testing.T) {
	ks := NewInMemoryKeystore()

	ref, err := ks.Store("a", "0xAB")
	require.NoError(t, err)
	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "AB", got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

var (
	_ KeystoreBackend = (*Keystore)(nil)
	_ KeystoreBackend = (*InMemoryKeystore)(nil)
)
