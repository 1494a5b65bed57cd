// Package models defines server-side records. The server only ever stores
// salts, key checks and ciphertext/IV pairs; plaintext secrets and derived
// keys never reach it.
package models

import "time"

// VaultSettings holds the per-user KDF salt. One per user, immutable once
// created.
type VaultSettings struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Salt      string    `json:"salt"`
	CreatedAt time.Time `json:"created_at"`
}

// VaultKey holds a known value encrypted under the user's derived key. The
// client decrypts it at unlock to tell a wrong master password apart from a
// corrupted record.
type VaultKey struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CheckCiphertext string    `json:"check_ciphertext"`
	CheckIV         string    `json:"check_iv"`
	CreatedAt       time.Time `json:"created_at"`
}
