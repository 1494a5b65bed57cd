package vault

import "errors"

var (
	// ErrLocked is returned by any operation that needs the key while the
	// session is locked.
	ErrLocked = errors.New("vault is locked")
	// ErrWrongPassword means the master password did not open the key check.
	ErrWrongPassword = errors.New("wrong master password")
	// ErrNotSetUp means the user has no salt or key check yet.
	ErrNotSetUp = errors.New("vault is not set up")
	// ErrAlreadySetUp is returned by Setup for an initialized vault.
	ErrAlreadySetUp = errors.New("vault is already set up")
)
