package cryptox

import (
	"encoding/base64"
	"fmt"
)

// BytesToText encodes b with the standard, padded base64 alphabet so that
// ciphertexts, IVs and salts can be kept in text-oriented storage.
func BytesToText(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// TextToBytes is the inverse of BytesToText. Malformed input yields
// ErrInvalidInput.
func TextToBytes(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return b, nil
}
