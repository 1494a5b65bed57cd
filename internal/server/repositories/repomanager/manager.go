// Package repomanager wires the storage backends (PostgreSQL, CouchDB or
// process memory) into one set of repositories.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/settings"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/vaultkeys"
)

// Repositories is one consistent set of repositories. Inside WithTx they
// share the transaction.
type Repositories struct {
	Settings    settings.Repository
	VaultKeys   vaultkeys.Repository
	Credentials credentials.Repository
}

type RepositoryManager interface {
	// Repositories returns repositories bound to the backend itself.
	Repositories() Repositories
	// WithTx runs fn with repositories that see one snapshot where the
	// backend supports it. Backends without transactions call fn directly.
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	RunMigrations(ctx context.Context) error
	Close() error
}
