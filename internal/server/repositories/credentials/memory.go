package credentials

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/models"
)

type MemoryRepository struct {
	mu   sync.Mutex
	byID map[string]models.Credential

	// now is replaceable in tests to control ordering.
	now func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[string]models.Credential),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) List(ctx context.Context, userID string) ([]*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.Credential, 0)
	for _, c := range r.byID {
		if c.UserID == userID {
			c := c
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r *MemoryRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[c.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	stored := *c
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	r.byID[c.ID] = stored
	return &stored, nil
}

func (r *MemoryRepository) Update(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[c.ID]
	if !ok || current.UserID != c.UserID {
		return nil, common.ErrorNotFound
	}
	stored := *c
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = r.now()
	r.byID[c.ID] = stored
	return &stored, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok || current.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}
