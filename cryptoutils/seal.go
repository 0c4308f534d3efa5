// Package cryptoutils provides the cryptographic helpers used by the
// client-side secret stores: passphrase-based sealing of commitment secrets
// with an argon2id-derived AES-GCM key.
package cryptoutils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const saltSize = 16

// ErrWrongPassphrase is returned when a sealed secret fails authenticated
// decryption, which with AES-GCM means the passphrase (or the ciphertext)
// is wrong.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted sealed data")

// Seal encrypts data with a key derived from passphrase using argon2id and
// AES-GCM. The output carries the random salt and nonce, so each call
// produces a distinct ciphertext even for identical inputs.
func Seal(passphrase, data []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Layout: salt || nonce || ciphertext.
	out := make([]byte, 0, saltSize+len(nonce)+len(data)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, data, nil), nil
}

// Open decrypts data produced by Seal with the same passphrase.
func Open(passphrase, sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize {
		return nil, errors.New("sealed data too short")
	}

	salt := sealed[:saltSize]
	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}

	if len(sealed) < saltSize+aead.NonceSize() {
		return nil, errors.New("sealed data too short")
	}

	nonce := sealed[saltSize : saltSize+aead.NonceSize()]
	plaintext, err := aead.Open(nil, nonce, sealed[saltSize+aead.NonceSize():], nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}

	return plaintext, nil
}

func newAEAD(passphrase, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	return cipher.NewGCM(block)
}
