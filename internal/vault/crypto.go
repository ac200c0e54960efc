package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
)

// Argon2id parameters of locked notes (m=19 MiB, t=2, p=1).
const (
	argonTime    = 2
	argonMemory  = 19 * 1024
	argonThreads = 1
	keyLen       = 32
	saltLen      = 16
)

// errDecrypt is returned when authentication fails, which for a well-formed
// file means the password is wrong.
var errDecrypt = errors.New("vault: decrypt: authentication failed")

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keyLen)
}

// encrypt seals plaintext as "salt$nonce$ciphertext". The salt is unpadded
// base64, nonce and ciphertext are padded standard base64.
func encrypt(plaintext, password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("vault: generate salt: %w", err)
	}
	gcm, err := newGCM(deriveKey(password, salt))
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("vault: generate nonce: %w", err)
	}
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return strings.Join([]string{
		base64.RawStdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(nonce),
		base64.StdEncoding.EncodeToString(sealed),
	}, "$"), nil
}

// decrypt opens a file produced by encrypt. Structural problems are reported
// as apperr.ErrCorrupted, a failed tag check as errDecrypt.
func decrypt(data, password string) (string, error) {
	parts := strings.Split(strings.TrimSpace(data), "$")
	if len(parts) != 3 {
		return "", fmt.Errorf("vault: decrypt: want 3 fields, got %d: %w", len(parts), apperr.ErrCorrupted)
	}
	salt, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(parts[0], "="))
	if err != nil {
		return "", fmt.Errorf("vault: decrypt: salt: %w", apperr.ErrCorrupted)
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("vault: decrypt: nonce: %w", apperr.ErrCorrupted)
	}
	sealed, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("vault: decrypt: ciphertext: %w", apperr.ErrCorrupted)
	}
	gcm, err := newGCM(deriveKey(password, salt))
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("vault: decrypt: nonce size %d: %w", len(nonce), apperr.ErrCorrupted)
	}
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errDecrypt
	}
	return string(plain), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: gcm: %w", err)
	}
	return gcm, nil
}
