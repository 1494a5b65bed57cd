// Package cryptox implements the client-side envelope encryption used by
// passvault: a symmetric key is derived from the master password and the
// user's salt, and every secret is sealed with AES-256-GCM under that key
// and a fresh IV. Nothing produced here other than ciphertexts, IVs and
// salts is ever meant to leave the process.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the size of the per-user KDF salt.
	SaltSize = 16
	// NonceSize is the size of the AES-GCM initialization vector.
	NonceSize = 12
	// KeySize is the size of the derived AES-256 key.
	KeySize = 32
	// KDFIterations is the PBKDF2-HMAC-SHA256 work factor.
	KDFIterations = 100000
)

// randReader is a test seam for crypto/rand.
var randReader io.Reader = rand.Reader

// Key is derived key material usable only for Encrypt and Decrypt. The bytes
// live in a memguard buffer and are never exposed; Key cannot be printed or
// serialized.
type Key struct {
	buf *memguard.LockedBuffer
}

// Sealed is the text form of one encrypted secret. Both fields are required
// to decrypt it.
type Sealed struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
}

// NewSalt returns SaltSize fresh random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(randReader, salt); err != nil {
		return nil, fmt.Errorf("salt generation: %w", err)
	}
	return salt, nil
}

// DeriveKey derives the vault key from password and salt with
// PBKDF2-HMAC-SHA256 (KDFIterations rounds, 256-bit output). The salt is
// always mixed into the derivation, so the same password yields different
// keys for different users. The result is deterministic for a given pair.
//
// No strength policy is applied to password; it only has to be non-empty.
func DeriveKey(password string, salt []byte) (*Key, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: empty password", ErrInvalidInput)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrInvalidInput, SaltSize, len(salt))
	}

	pw := []byte(password)
	defer memguard.WipeBytes(pw)

	material := pbkdf2.Key(pw, salt, KDFIterations, KeySize, sha256.New)

	// NewBufferFromBytes wipes material.
	return &Key{buf: memguard.NewBufferFromBytes(material)}, nil
}

// Wipe destroys the key material. It is safe to call more than once.
func (k *Key) Wipe() {
	if k == nil || k.buf == nil {
		return
	}
	k.buf.Destroy()
	k.buf = nil
}

// String never reveals key material.
func (k *Key) String() string { return "cryptox.Key{redacted}" }

// GoString never reveals key material.
func (k *Key) GoString() string { return k.String() }

// MarshalJSON always fails: keys are never serialized.
func (k *Key) MarshalJSON() ([]byte, error) { return nil, ErrKeyExport }

// MarshalText always fails: keys are never serialized.
func (k *Key) MarshalText() ([]byte, error) { return nil, ErrKeyExport }

func (k *Key) alive() bool {
	return k != nil && k.buf != nil && k.buf.IsAlive()
}

func (k *Key) aead() (cipher.AEAD, error) {
	if !k.alive() {
		return nil, fmt.Errorf("%w: key is not available", ErrInvalidInput)
	}
	block, err := aes.NewCipher(k.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return cipher.NewGCM(block)
}

// Encrypt seals the UTF-8 bytes of plaintext with AES-256-GCM under key and
// a fresh random NonceSize-byte IV. The GCM tag is appended to the
// ciphertext. Both outputs are base64 text; the caller must store them
// together.
func Encrypt(plaintext string, key *Key) (*Sealed, error) {
	gcm, err := key.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return nil, fmt.Errorf("iv generation: %w", err)
	}

	pt := []byte(plaintext)
	defer memguard.WipeBytes(pt)

	ciphertext := gcm.Seal(nil, nonce, pt, nil)

	return &Sealed{Ciphertext: BytesToText(ciphertext), IV: BytesToText(nonce)}, nil
}

// Decrypt opens a ciphertext/IV pair produced by Encrypt.
//
// An empty IV or ciphertext yields ErrMissingMaterial without touching the
// cipher. Malformed base64 or an IV of the wrong length yields
// ErrInvalidInput. A wrong key or any tampering yields
// ErrAuthenticationFailure; no plaintext is returned in that case.
func Decrypt(ciphertext string, key *Key, iv string) (string, error) {
	if iv == "" {
		return "", fmt.Errorf("%w: empty iv", ErrMissingMaterial)
	}
	if ciphertext == "" {
		return "", fmt.Errorf("%w: empty ciphertext", ErrMissingMaterial)
	}

	nonce, err := TextToBytes(iv)
	if err != nil {
		return "", fmt.Errorf("decode iv: %w", err)
	}
	if len(nonce) != NonceSize {
		return "", fmt.Errorf("%w: iv must be %d bytes, got %d", ErrInvalidInput, NonceSize, len(nonce))
	}

	data, err := TextToBytes(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	gcm, err := key.aead()
	if err != nil {
		return "", err
	}

	pt, err := gcm.Open(nil, nonce, data, nil)
	if err != nil {
		return "", ErrAuthenticationFailure
	}
	defer memguard.WipeBytes(pt)

	return string(pt), nil
}
