package cryptoutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundtrip(t *testing.T) {
	passphrase := []byte("correct horse battery staple")
	data := []byte("commitment secret material")

	sealed, err := Seal(passphrase, data)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), string(data))

	opened, err := Open(passphrase, sealed)
	require.NoError(t, err)
	assert.Equal(t, data, opened)
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, err := Seal([]byte("right"), []byte("data"))
	require.NoError(t, err)

	_, err = Open([]byte("wrong"), sealed)
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestSealRandomized(t *testing.T) {
	passphrase := []byte("p")
	data := []byte("same input")

	a, err := Seal(passphrase, data)
	require.NoError(t, err)
	b, err := Seal(passphrase, data)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "fresh salt and nonce per seal")
}

func TestOpenTruncated(t *testing.T) {
	_, err := Open([]byte("p"), []byte("short"))
	assert.Error(t, err)
}
