package settings

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/models"
)

// MemoryRepository is a process-local Repository for development and tests.
type MemoryRepository struct {
	mu     sync.Mutex
	byUser map[string]models.VaultSettings
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUser: make(map[string]models.VaultSettings)}
}

func (r *MemoryRepository) Get(ctx context.Context, userID string) (*models.VaultSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byUser[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) CreateIfAbsent(ctx context.Context, s *models.VaultSettings) (*models.VaultSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byUser[s.UserID]; ok {
		return &existing, nil
	}
	stored := *s
	stored.CreatedAt = time.Now().UTC()
	r.byUser[s.UserID] = stored
	return &stored, nil
}
