package vault

import "context"

// Store is the per-user persistence the vault runs on. The user is implied
// by the store (for the HTTP store, by its access token).
//
// GetSalt and GetVaultKey return common.ErrorNotFound when absent. SetSalt
// never overwrites: it returns the id of whichever salt is stored.
// InitializeVaultKey returns common.ErrorAlreadyExists on a second call.
// UpdateCredential and DeleteCredential return common.ErrorUnauthorized for
// records the user does not own or that do not exist.
type Store interface {
	GetSalt(ctx context.Context) (string, error)
	SetSalt(ctx context.Context, salt string) (string, error)
	GetVaultKey(ctx context.Context) (*KeyCheck, error)
	InitializeVaultKey(ctx context.Context, k KeyCheck) (string, error)
	ListCredentials(ctx context.Context) ([]Record, error)
	CreateCredential(ctx context.Context, f RecordFields) (string, error)
	UpdateCredential(ctx context.Context, id string, f RecordFields) (string, error)
	DeleteCredential(ctx context.Context, id string) (string, error)
}
