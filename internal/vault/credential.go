package vault

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
)

// DefaultCategory applies when a credential is saved without one.
const DefaultCategory = common.DefaultCategory

// Categories are the suggested categories. Others are accepted as free text.
var Categories = []string{"personal", "work", "finance", "social"}

// CredentialInput is what the user types when adding or editing a login.
// Notes is nil when there are none.
type CredentialInput struct {
	Website  string
	Username string
	Password string
	Category string
	Notes    *string
}

func (in CredentialInput) normalize() (CredentialInput, error) {
	in.Website = strings.TrimSpace(in.Website)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if in.Website == "" {
		return in, fmt.Errorf("%w: website is required", common.ErrorValidation)
	}
	if in.Password == "" {
		return in, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	return in, nil
}

// Record is a stored credential as the server returns it: the password is
// present only as ciphertext and IV.
type Record struct {
	ID         string    `json:"id"`
	Website    string    `json:"website"`
	Username   string    `json:"username"`
	Ciphertext string    `json:"ciphertext"`
	IV         string    `json:"iv"`
	Category   string    `json:"category"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RecordFields is the body of a create or update.
type RecordFields struct {
	Website    string  `json:"website"`
	Username   string  `json:"username"`
	Ciphertext string  `json:"ciphertext"`
	IV         string  `json:"iv"`
	Category   string  `json:"category"`
	Notes      *string `json:"notes,omitempty"`
}

// KeyCheck is the known value encrypted at setup.
type KeyCheck struct {
	Ciphertext string `json:"check_ciphertext"`
	IV         string `json:"check_iv"`
}

// Entry is a decrypted credential. When the password could not be
// decrypted Err says why and Password is empty; other fields are still set.
type Entry struct {
	ID        string
	Website   string
	Username  string
	Password  string
	Category  string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
	Err       error
}
