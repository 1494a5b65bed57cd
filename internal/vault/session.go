package vault

import (
	"sync"

	"github.com/dmitrijs2005/passvault/internal/cryptox"
)

// Session holds the derived key of one unlocked vault. Callers own their
// sessions; there is no shared global state. The key lives in a memguard
// locked buffer that is destroyed on Lock or when a later Unlock replaces it.
//
// A Session is safe for concurrent use.
type Session struct {
	mu  sync.RWMutex
	key *cryptox.Key
}

func NewSession() *Session {
	return &Session{}
}

// Unlock derives the key from password and salt and keeps it. A previously
// held key is destroyed and replaced.
func (s *Session) Unlock(password string, salt []byte) error {
	key, err := cryptox.DeriveKey(password, salt)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.key
	s.key = key
	s.mu.Unlock()

	old.Wipe()
	return nil
}

// Lock destroys the key. Locking a locked session does nothing.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key.Wipe()
	s.key = nil
}

func (s *Session) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != nil
}

// withKey runs fn under the read lock, so Lock waits for in-flight use.
func (s *Session) withKey(fn func(k *cryptox.Key) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.key == nil {
		return ErrLocked
	}
	return fn(s.key)
}

// Encrypt seals plaintext under the session key with a fresh IV.
func (s *Session) Encrypt(plaintext string) (*cryptox.Sealed, error) {
	var out *cryptox.Sealed
	err := s.withKey(func(k *cryptox.Key) error {
		var err error
		out, err = cryptox.Encrypt(plaintext, k)
		return err
	})
	return out, err
}

// Decrypt opens a ciphertext/IV pair. Errors are those of cryptox.Decrypt,
// or ErrLocked.
func (s *Session) Decrypt(ciphertext, iv string) (string, error) {
	var out string
	err := s.withKey(func(k *cryptox.Key) error {
		var err error
		out, err = cryptox.Decrypt(ciphertext, k, iv)
		return err
	})
	return out, err
}
