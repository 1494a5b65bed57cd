// Package vault is the client side of passvault. It owns the unlocked
// session and turns user input into the encrypted records a Store keeps.
// Plaintext passwords and the derived key never reach the Store.
package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
)

// keyCheckPlaintext is encrypted at setup; a password is accepted when it
// decrypts the result.
const keyCheckPlaintext = "passvault:key-check:v1"

type Status int

const (
	StatusNotSetUp Status = iota
	StatusLocked
	StatusUnlocked
)

func (s Status) String() string {
	switch s {
	case StatusNotSetUp:
		return "not set up"
	case StatusLocked:
		return "locked"
	case StatusUnlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

type Vault struct {
	store   Store
	session *Session
}

func New(store Store, session *Session) *Vault {
	if session == nil {
		session = NewSession()
	}
	return &Vault{store: store, session: session}
}

func (v *Vault) Session() *Session { return v.session }

func (v *Vault) Status(ctx context.Context) (Status, error) {
	if _, err := v.store.GetVaultKey(ctx); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return StatusNotSetUp, nil
		}
		return StatusNotSetUp, err
	}
	if v.session.IsUnlocked() {
		return StatusUnlocked, nil
	}
	return StatusLocked, nil
}

// Setup creates the user's salt and key check and leaves the vault
// unlocked. The salt is read back after storing so that a concurrent setup
// from another device converges on one salt.
func (v *Vault) Setup(ctx context.Context, password string) error {
	if _, err := v.store.GetVaultKey(ctx); err == nil {
		return ErrAlreadySetUp
	} else if !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	salt, err := v.salt(ctx)
	if errors.Is(err, ErrNotSetUp) {
		fresh, genErr := cryptox.NewSalt()
		if genErr != nil {
			return genErr
		}
		if _, err := v.store.SetSalt(ctx, cryptox.BytesToText(fresh)); err != nil {
			return fmt.Errorf("store salt: %w", err)
		}
		salt, err = v.salt(ctx)
	}
	if err != nil {
		return err
	}

	if err := v.session.Unlock(password, salt); err != nil {
		return err
	}

	check, err := v.session.Encrypt(keyCheckPlaintext)
	if err != nil {
		v.session.Lock()
		return err
	}

	if _, err := v.store.InitializeVaultKey(ctx, KeyCheck{Ciphertext: check.Ciphertext, IV: check.IV}); err != nil {
		v.session.Lock()
		if errors.Is(err, common.ErrorAlreadyExists) {
			return ErrAlreadySetUp
		}
		return fmt.Errorf("store key check: %w", err)
	}
	return nil
}

// Unlock derives the key and verifies it against the stored key check. On
// any failure the session is left locked.
func (v *Vault) Unlock(ctx context.Context, password string) error {
	salt, err := v.salt(ctx)
	if err != nil {
		return err
	}

	check, err := v.store.GetVaultKey(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		return ErrNotSetUp
	}
	if err != nil {
		return err
	}

	if err := v.session.Unlock(password, salt); err != nil {
		v.session.Lock()
		return err
	}

	got, err := v.session.Decrypt(check.Ciphertext, check.IV)
	if err != nil {
		v.session.Lock()
		if errors.Is(err, cryptox.ErrAuthenticationFailure) {
			return ErrWrongPassword
		}
		return fmt.Errorf("key check: %w", err)
	}
	if got != keyCheckPlaintext {
		v.session.Lock()
		return ErrWrongPassword
	}
	return nil
}

func (v *Vault) Lock() { v.session.Lock() }

func (v *Vault) salt(ctx context.Context) ([]byte, error) {
	text, err := v.store.GetSalt(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrNotSetUp
	}
	if err != nil {
		return nil, err
	}
	salt, err := cryptox.TextToBytes(text)
	if err != nil {
		return nil, fmt.Errorf("stored salt: %w", err)
	}
	return salt, nil
}

func (v *Vault) seal(in CredentialInput) (RecordFields, error) {
	in, err := in.normalize()
	if err != nil {
		return RecordFields{}, err
	}
	sealed, err := v.session.Encrypt(in.Password)
	if err != nil {
		return RecordFields{}, err
	}
	return RecordFields{
		Website:    in.Website,
		Username:   in.Username,
		Ciphertext: sealed.Ciphertext,
		IV:         sealed.IV,
		Category:   in.Category,
		Notes:      in.Notes,
	}, nil
}

// Add encrypts the password and stores a new credential.
func (v *Vault) Add(ctx context.Context, in CredentialInput) (string, error) {
	f, err := v.seal(in)
	if err != nil {
		return "", err
	}
	return v.store.CreateCredential(ctx, f)
}

// Edit replaces a credential. The password is encrypted again with a fresh
// IV, and both are stored.
func (v *Vault) Edit(ctx context.Context, id string, in CredentialInput) error {
	f, err := v.seal(in)
	if err != nil {
		return err
	}
	_, err = v.store.UpdateCredential(ctx, id, f)
	return err
}

func (v *Vault) Delete(ctx context.Context, id string) error {
	if !v.session.IsUnlocked() {
		return ErrLocked
	}
	_, err := v.store.DeleteCredential(ctx, id)
	return err
}

// List returns every credential, oldest first, with passwords decrypted.
// A record that cannot be decrypted is still listed with Entry.Err set.
func (v *Vault) List(ctx context.Context) ([]Entry, error) {
	if !v.session.IsUnlocked() {
		return nil, ErrLocked
	}
	records, err := v.store.ListCredentials(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		e := Entry{
			ID:        r.ID,
			Website:   r.Website,
			Username:  r.Username,
			Category:  r.Category,
			Notes:     r.Notes,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
		e.Password, e.Err = v.session.Decrypt(r.Ciphertext, r.IV)
		if errors.Is(e.Err, ErrLocked) {
			return nil, ErrLocked
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Find returns one listed credential. A decryption failure is kept in
// Entry.Err so the non-secret fields stay available.
func (v *Vault) Find(ctx context.Context, id string) (*Entry, error) {
	entries, err := v.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

// Reveal returns one decrypted credential. Unlike Find, a decryption
// failure is returned as the error.
func (v *Vault) Reveal(ctx context.Context, id string) (*Entry, error) {
	e, err := v.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Err != nil {
		return nil, e.Err
	}
	return e, nil
}
