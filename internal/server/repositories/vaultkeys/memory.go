package vaultkeys

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.Mutex
	byUser map[string]models.VaultKey
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUser: make(map[string]models.VaultKey)}
}

func (r *MemoryRepository) Get(ctx context.Context, userID string) (*models.VaultKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.byUser[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &k, nil
}

func (r *MemoryRepository) Create(ctx context.Context, k *models.VaultKey) (*models.VaultKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUser[k.UserID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	stored := *k
	stored.CreatedAt = time.Now().UTC()
	r.byUser[k.UserID] = stored
	return &stored, nil
}
