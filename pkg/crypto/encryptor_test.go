package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptorRoundTrip(t *testing.T) {
	e, err := NewEncryptor("")
	require.NoError(t, err)

	plaintext := "data:image/png;base64,iVBORw0KGgo="
	ciphertext, err := e.EncryptString(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := e.DecryptString(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptorWithProvidedKey(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	e1, err := NewEncryptor(key)
	require.NoError(t, err)
	e2, err := NewEncryptor(key)
	require.NoError(t, err)

	ciphertext, err := e1.EncryptString("signature artifact")
	require.NoError(t, err)

	// A second encryptor built from the same key can decrypt.
	decrypted, err := e2.DecryptString(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "signature artifact", decrypted)
}

func TestEncryptorRejectsInvalidKey(t *testing.T) {
	_, err := NewEncryptor("not-an-age-key")
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	e, err := NewEncryptor("")
	require.NoError(t, err)

	_, err = e.DecryptString("%%% not base64 %%%")
	assert.Error(t, err)

	_, err = e.DecryptString("aGVsbG8gd29ybGQ=")
	assert.Error(t, err)
}
