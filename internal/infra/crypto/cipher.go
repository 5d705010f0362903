// Package crypto provides the symmetric ciphers protecting stored catalog
// passwords. A cipher binds one algorithm to one key; ciphertext is base64 of
// the nonce/IV-prefixed raw bytes, safe for a text database column.
package crypto

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"biblio/internal/domain/entity"
	"biblio/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blowfish"
)

// Supported algorithm names as they appear in configuration and on the
// admin console command line.
const (
	AlgorithmAES      = "aes"
	AlgorithmBlowfish = "blowfish"
)

// ErrUnsupportedAlgorithm is returned when the algorithm name is not
// recognized. Cipher construction happens before any persistent state is
// altered, so an unknown name aborts a migration with zero side effects.
var ErrUnsupportedAlgorithm = errors.New("unsupported encryption algorithm")

// DecryptError reports that a stored value could not be opened, typically a
// key or algorithm mismatch.
type DecryptError struct {
	Inner error
}

func (e *DecryptError) Error() string {
	return "decrypt failed: " + e.Inner.Error()
}

func (e *DecryptError) Unwrap() error {
	return e.Inner
}

// NewCipher builds the cipher for the given setting. The disabled variant
// yields (nil, nil): no cipher exists and encrypted values are treated as
// absent.
func NewCipher(setting entity.EncryptionSetting) (service.Cipher, error) {
	if !setting.Enabled() {
		return nil, nil
	}
	if setting.Key() == "" {
		return nil, errors.New("encryption key must not be empty")
	}

	switch setting.Algorithm() {
	case AlgorithmAES:
		return newAESCipher(setting.Key())
	case AlgorithmBlowfish:
		return newBlowfishCipher(setting.Key())
	default:
		return nil, errors.Wrap(ErrUnsupportedAlgorithm, setting.Algorithm())
	}
}

// newAESCipher returns an AES-256-GCM cipher. The configured key string is
// stretched to 32 bytes with SHA-256 so operators may use passphrases of any
// length.
func newAESCipher(key string) (service.Cipher, error) {
	derived := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(derived[:])
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AES block cipher")
	}
	aead, err := stdcipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCM")
	}

	return &aesCipher{aead: aead}, nil
}

type aesCipher struct {
	aead stdcipher.AEAD
}

func (c *aesCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "failed to generate nonce")
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *aesCipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", &DecryptError{Inner: err}
	}
	if len(raw) < c.aead.NonceSize() {
		return "", &DecryptError{Inner: errors.New("ciphertext too short")}
	}
	opened, err := c.aead.Open(nil, raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():], nil)
	if err != nil {
		return "", &DecryptError{Inner: err}
	}

	return string(opened), nil
}

// newBlowfishCipher returns a Blowfish-CBC cipher with PKCS#7 padding.
// Kept for installations that adopted encryption before AES support; the
// admin console migrates them forward.
func newBlowfishCipher(key string) (service.Cipher, error) {
	block, err := blowfish.NewCipher([]byte(key))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Blowfish block cipher")
	}

	return &blowfishCipher{block: block}, nil
}

type blowfishCipher struct {
	block *blowfish.Cipher
}

func (c *blowfishCipher) Encrypt(plaintext string) (string, error) {
	padded := padPKCS7([]byte(plaintext), blowfish.BlockSize)

	out := make([]byte, blowfish.BlockSize+len(padded))
	iv := out[:blowfish.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", errors.Wrap(err, "failed to generate IV")
	}

	stdcipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[blowfish.BlockSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *blowfishCipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", &DecryptError{Inner: err}
	}
	if len(raw) < 2*blowfish.BlockSize || len(raw)%blowfish.BlockSize != 0 {
		return "", &DecryptError{Inner: errors.New("ciphertext length is not a whole number of blocks")}
	}

	iv, body := raw[:blowfish.BlockSize], raw[blowfish.BlockSize:]
	plain := make([]byte, len(body))
	stdcipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plain, body)

	unpadded, err := unpadPKCS7(plain, blowfish.BlockSize)
	if err != nil {
		return "", &DecryptError{Inner: err}
	}

	return string(unpadded), nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}

	return padded
}

func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding byte")
		}
	}

	return data[:len(data)-n], nil
}
