package models

import "time"

// Credential is one stored login. Ciphertext and IV are a pair; a record
// without its IV cannot be decrypted.
type Credential struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Website    string    `json:"website"`
	Username   string    `json:"username"`
	Ciphertext string    `json:"ciphertext"`
	IV         string    `json:"iv"`
	Category   string    `json:"category"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CredentialFields are the caller-supplied fields of a create or update.
type CredentialFields struct {
	Website    string  `json:"website" validate:"required,max=2048"`
	Username   string  `json:"username" validate:"max=512"`
	Ciphertext string  `json:"ciphertext" validate:"required,base64"`
	IV         string  `json:"iv" validate:"required,base64"`
	Category   string  `json:"category" validate:"max=64"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=4096"`
}
