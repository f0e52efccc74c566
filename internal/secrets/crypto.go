package secrets

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"os/user"

	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 100000
	kdfKeyLen     = 32 // AES-256
	kdfSaltLen    = 32
)

// keyMaterial builds the KDF input string. It ties the derived key to the
// machine, the user and the host, so an encrypted file copied to another
// machine fails to decrypt rather than leaking.
func keyMaterial(identity func(context.Context) string) string {
	return fmt.Sprintf("%s:%s:%s", identity(context.Background()), currentUsername(), hostnameOr("localhost"))
}

func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

func hostnameOr(fallback string) string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return fallback
	}
	return name
}

// deriveKey stretches the key material into an AES-256 key with
// PBKDF2-SHA256. The iteration count is the real defense here: the
// material itself is low-entropy.
func deriveKey(material string, salt []byte) []byte {
	return pbkdf2.Key([]byte(material), salt, kdfIterations, kdfKeyLen, sha256.New)
}

// encryptFallback encrypts plaintext with a key derived from material and
// a fresh salt, using AES-256-CBC with PKCS#7 padding, and frames the
// result as an envelope.
//
// Empty plaintext is replaced by a single newline before encryption;
// decryptFallback strips it again. This keeps the degenerate zero-length
// input away from the block cipher entirely.
func encryptFallback(material string, plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		plaintext = []byte("\n")
	}

	salt := make([]byte, kdfSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	iv := make([]byte, envelopeIVLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("generating iv: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(material, salt))
	if err != nil {
		return nil, fmt.Errorf("initializing cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return encodeEnvelope(salt, iv, ciphertext), nil
}

// decryptFallback parses an envelope and decrypts it with the key derived
// from material and the envelope's own salt. A wrong key surfaces as a
// padding error; callers treat any error here as "file unreadable".
func decryptFallback(material string, data []byte) ([]byte, error) {
	salt, iv, ciphertext, err := decodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d not a multiple of the block size", ErrMalformedEnvelope, len(ciphertext))
	}

	block, err := aes.NewCipher(deriveKey(material, salt))
	if err != nil {
		return nil, fmt.Errorf("initializing cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	plaintext, err = pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, err
	}
	// Undo the empty-plaintext guard applied before encryption. Only the
	// exact guard value is stripped, so payloads that genuinely end in a
	// newline survive the round trip. A payload of a single "\n" is
	// indistinguishable from guarded empty input and decrypts as empty.
	if bytes.Equal(plaintext, []byte("\n")) {
		plaintext = nil
	}
	return plaintext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-n], nil
}
