// Package secrets wraps fernet encryption for data held at rest. Reviewer
// annotations carry commentary about valuation discrepancies, so the
// comment text never hits the database in the clear.
package secrets

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

// ErrInvalidCiphertext indicates stored data that does not verify against
// the configured key, typically after a key rotation without re-encryption.
var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// Encryptor encrypts and decrypts strings with a single fernet key.
type Encryptor struct {
	key *fernet.Key
}

// NewEncryptor creates an Encryptor from a base64-encoded fernet key,
// typically supplied via the FERNET_KEY environment variable.
func NewEncryptor(encodedKey string) (*Encryptor, error) {
	if encodedKey == "" {
		return nil, errors.New("fernet key not configured")
	}
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}
	return &Encryptor{key: key}, nil
}

// NewRandomEncryptor creates an Encryptor with a freshly generated key.
// Data encrypted with it does not survive a restart; intended for tests
// and for running without a configured key.
func NewRandomEncryptor() (*Encryptor, error) {
	var key fernet.Key
	if err := key.Generate(); err != nil {
		return nil, fmt.Errorf("failed to generate fernet key: %w", err)
	}
	return &Encryptor{key: &key}, nil
}

// Encrypt returns the fernet token for the given plaintext.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(plaintext), e.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}
	return string(token), nil
}

// Decrypt verifies and decrypts a fernet token. Tokens never expire; the
// store is the system of record, not a transport.
func (e *Encryptor) Decrypt(token string) (string, error) {
	plaintext := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{e.key})
	if plaintext == nil {
		return "", ErrInvalidCiphertext
	}
	return string(plaintext), nil
}
