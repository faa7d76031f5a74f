package trustcommon

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Private signing keys are stored encrypted at rest. The blob format is
// [version(1B)][salt(16B)][nonce(12B)][ciphertext(N)], with the key derived
// from the configured passphrase via Argon2id and sealed with AES-GCM.

const (
	blobVersion = 0x01

	saltSize  = 16
	keySize   = 32
	nonceSize = 12

	argonMemory      = 64 * 1024
	argonIterations  = 3
	argonParallelism = 4

	minBlobSize = 1 + saltSize + nonceSize + 1
)

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, keySize)
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Encrypt seals data with a passphrase-derived key.
func Encrypt(data []byte, password string) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data")
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, data, nil)

	result := make([]byte, 0, 1+saltSize+nonceSize+len(ciphertext))
	result = append(result, blobVersion)
	result = append(result, salt...)
	result = append(result, nonce...)
	result = append(result, ciphertext...)
	return result, nil
}

// Decrypt opens a blob produced by Encrypt.
func Decrypt(blob []byte, password string) ([]byte, error) {
	if len(blob) < minBlobSize {
		return nil, fmt.Errorf("invalid blob length: %d (minimum: %d)", len(blob), minBlobSize)
	}
	if blob[0] != blobVersion {
		return nil, fmt.Errorf("unsupported format version: %d", blob[0])
	}

	salt := blob[1 : 1+saltSize]
	nonce := blob[1+saltSize : 1+saltSize+nonceSize]
	ciphertext := blob[1+saltSize+nonceSize:]

	aead, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}
