// Package credentials stores encrypted credential records. Every query is
// scoped by user id; a record owned by someone else behaves as missing.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/server/models"
)

type Repository interface {
	// List returns the user's records ordered by creation time, then id.
	List(ctx context.Context, userID string) ([]*models.Credential, error)
	// Get returns a record by id regardless of owner, or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.Credential, error)
	Create(ctx context.Context, c *models.Credential) (*models.Credential, error)
	// Update replaces the mutable fields of the record matching both c.ID
	// and c.UserID, or returns common.ErrorNotFound.
	Update(ctx context.Context, c *models.Credential) (*models.Credential, error)
	// Delete removes the record matching id and userID, or returns
	// common.ErrorNotFound.
	Delete(ctx context.Context, id, userID string) error
}
