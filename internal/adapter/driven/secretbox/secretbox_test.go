package secretbox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/panelctl/internal/domain/port/driven"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, KeySize)
}

func TestBox_SealOpen(t *testing.T) {
	box, err := New(testKey())
	require.NoError(t, err)

	sealed, err := box.Seal("s3cr3t-token")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "s3cr3t-token")

	plain, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t-token", plain)
}

func TestBox_SealUsesFreshNonce(t *testing.T) {
	box, err := New(testKey())
	require.NoError(t, err)

	a, err := box.Seal("same")
	require.NoError(t, err)
	b, err := box.Seal("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestBox_NilKey(t *testing.T) {
	box, err := New(nil)
	require.NoError(t, err)
	assert.False(t, box.Enabled())

	_, err = box.Seal("x")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)

	_, err = box.Open("x")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}

func TestNew_WrongKeySize(t *testing.T) {
	_, err := New([]byte("short"))
	require.Error(t, err)
}

func TestBox_OpenWrongKey(t *testing.T) {
	box, err := New(testKey())
	require.NoError(t, err)
	sealed, err := box.Seal("token")
	require.NoError(t, err)

	other, err := New(bytes.Repeat([]byte{0x01}, KeySize))
	require.NoError(t, err)
	_, err = other.Open(sealed)
	require.Error(t, err)
}

func TestBox_OpenGarbage(t *testing.T) {
	box, err := New(testKey())
	require.NoError(t, err)

	_, err = box.Open("not base64!")
	require.Error(t, err)

	_, err = box.Open("AAAA")
	assert.EqualError(t, err, "ciphertext too short")
}
