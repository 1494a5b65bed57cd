// Package vaultkeys stores the per-user key check written at vault setup.
package vaultkeys

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/server/models"
)

type Repository interface {
	// Get returns the key check of userID or common.ErrorNotFound.
	Get(ctx context.Context, userID string) (*models.VaultKey, error)
	// Create stores k. A user that already has a key check gets
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, k *models.VaultKey) (*models.VaultKey, error)
}
