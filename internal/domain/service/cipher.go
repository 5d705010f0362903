// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import "biblio/internal/domain/entity"

// Cipher is a bound combination of a symmetric algorithm and key, able to
// protect catalog passwords at rest. Ciphertext is an opaque string safe for
// database storage (implementations base64-encode the raw bytes).
type Cipher interface {
	// Encrypt seals a plaintext secret.
	Encrypt(plaintext string) (string, error)

	// Decrypt opens a previously sealed secret. A wrong key or algorithm
	// surfaces as a decryption error, not garbage plaintext.
	Decrypt(ciphertext string) (string, error)
}

// CipherFactory builds the cipher for a protection scheme. The disabled
// variant yields (nil, nil): no cipher exists for unencrypted storage.
// Construction of an unknown algorithm fails without side effects, which the
// re-encryption migration relies on for its fail-fast ordering.
type CipherFactory func(setting entity.EncryptionSetting) (Cipher, error)
