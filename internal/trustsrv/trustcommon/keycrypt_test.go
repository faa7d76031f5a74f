package trustcommon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	data := []byte("ed25519 private key material")
	blob, err := Encrypt(data, "correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, data, blob)

	plain, err := Decrypt(blob, "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, data, plain)
}

func TestDecryptWrongPassword(t *testing.T) {
	blob, err := Encrypt([]byte("secret"), "password-one")
	require.NoError(t, err)

	_, err = Decrypt(blob, "password-two")
	assert.Error(t, err)
}

func TestDecryptRejectsMalformedBlob(t *testing.T) {
	_, err := Decrypt([]byte{0x01, 0x02}, "pw")
	assert.Error(t, err)

	blob, err := Encrypt([]byte("secret"), "pw")
	require.NoError(t, err)
	blob[0] = 0x7f
	_, err = Decrypt(blob, "pw")
	assert.Error(t, err)
}

func TestEncryptRejectsEmptyData(t *testing.T) {
	_, err := Encrypt(nil, "pw")
	assert.Error(t, err)
}
