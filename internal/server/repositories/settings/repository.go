// Package settings stores the per-user vault settings (the KDF salt).
package settings

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/server/models"
)

type Repository interface {
	// Get returns the settings of userID or common.ErrorNotFound.
	Get(ctx context.Context, userID string) (*models.VaultSettings, error)
	// CreateIfAbsent stores s unless the user already has settings, and
	// returns whichever record is stored afterwards. An existing salt is
	// never overwritten.
	CreateIfAbsent(ctx context.Context, s *models.VaultSettings) (*models.VaultSettings, error)
}
