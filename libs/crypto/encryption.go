// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the size in bytes of the symmetric keys, for AES-256.
	KeySize = 32

	saltSize = 16

	argon2Time    = 3
	argon2Memory  = 32 * 1024
	argon2Threads = 4
)

var (
	ErrDecryptionFailed = errors.New("could not decrypt the data")
	ErrInvalidKeySize   = errors.New("the key must be 32 bytes long")
	ErrMalformedCipher  = errors.New("the encrypted data is malformed")
)

// Envelope holds the output of a sealing operation. Both fields are
// base64 encoded so the envelope can be stored as text.
type Envelope struct {
	Nonce      string `json:"iv"`
	Ciphertext string `json:"data"`
}

// GenerateKey returns a fresh 256-bit symmetric key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("could not generate the key: %w", err)
	}
	return key, nil
}

// Seal encrypts the plaintext with AES-256-GCM. A new random nonce is
// generated on every call.
func Seal(plaintext, key []byte) (Envelope, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return Envelope{}, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return Envelope{}, fmt.Errorf("could not generate the nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	return Envelope{
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// Open reverses Seal. Any mismatch between the nonce, the ciphertext and
// the key results in ErrDecryptionFailed.
func Open(envelope Envelope, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce, err := base64.StdEncoding.DecodeString(envelope.Nonce)
	if err != nil || len(nonce) != aead.NonceSize() {
		return nil, ErrDecryptionFailed
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Ciphertext)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// Encrypt encrypts the data with a key derived from the passphrase using
// argon2id. The output is salt || nonce || ciphertext.
func Encrypt(data []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("could not generate the salt: %w", err)
	}

	aead, err := newAEAD(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("could not generate the nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(data)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, data, nil), nil
}

func Decrypt(data []byte, passphrase string) ([]byte, error) {
	if len(data) < saltSize {
		return nil, ErrMalformedCipher
	}
	salt := data[:saltSize]

	aead, err := newAEAD(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	if len(data) < saltSize+aead.NonceSize() {
		return nil, ErrMalformedCipher
	}
	nonce := data[saltSize : saltSize+aead.NonceSize()]
	ciphertext := data[saltSize+aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, KeySize)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("could not initialise the block cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("could not initialise GCM: %w", err)
	}
	return aead, nil
}
