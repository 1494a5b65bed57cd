package cryptox

import "errors"

var (
	// ErrInvalidInput reports an empty password, a salt or IV of the wrong
	// size, or text that is not valid base64.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthenticationFailure reports that AEAD decryption rejected the
	// ciphertext: the key is wrong (wrong master password) or the record
	// has been corrupted.
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrMissingMaterial reports a record without an IV or ciphertext. Such a
	// record cannot be decrypted under any key.
	ErrMissingMaterial = errors.New("missing encryption material")

	// ErrKeyExport is returned by any attempt to serialize a Key.
	ErrKeyExport = errors.New("key material is not exportable")
)
