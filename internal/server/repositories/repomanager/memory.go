package repomanager

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/settings"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/vaultkeys"
)

// InMemoryRepositoryManager keeps everything in process memory. Data is
// lost on restart.
type InMemoryRepositoryManager struct {
	repos Repositories
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{repos: Repositories{
		Settings:    settings.NewMemoryRepository(),
		VaultKeys:   vaultkeys.NewMemoryRepository(),
		Credentials: credentials.NewMemoryRepository(),
	}}
}

func (m *InMemoryRepositoryManager) Repositories() Repositories {
	return m.repos
}

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return fn(ctx, m.repos)
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Close() error { return nil }
