package vault

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
)

// memStore is a single-user Store with the same contract as the server.
type memStore struct {
	mu       sync.Mutex
	salt     string
	key      *KeyCheck
	records  []Record
	seq      int
	keyTaken bool // InitializeVaultKey reports AlreadyExists
	listErr  error
}

var _ Store = (*memStore)(nil)

func (s *memStore) GetSalt(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.salt == "" {
		return "", common.ErrorNotFound
	}
	return s.salt, nil
}

func (s *memStore) SetSalt(_ context.Context, salt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.salt == "" {
		s.salt = salt
	}
	return "salt-1", nil
}

func (s *memStore) GetVaultKey(context.Context) (*KeyCheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil {
		return nil, common.ErrorNotFound
	}
	k := *s.key
	return &k, nil
}

func (s *memStore) InitializeVaultKey(_ context.Context, k KeyCheck) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != nil || s.keyTaken {
		return "", common.ErrorAlreadyExists
	}
	s.key = &k
	return "key-1", nil
}

func (s *memStore) ListCredentials(context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]Record(nil), s.records...), nil
}

func (s *memStore) CreateCredential(_ context.Context, f RecordFields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	now := time.Date(2024, 1, 1, 0, 0, s.seq, 0, time.UTC)
	r := Record{
		ID:         fmt.Sprintf("cred-%d", s.seq),
		Website:    f.Website,
		Username:   f.Username,
		Ciphertext: f.Ciphertext,
		IV:         f.IV,
		Category:   f.Category,
		Notes:      f.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.records = append(s.records, r)
	return r.ID, nil
}

func (s *memStore) UpdateCredential(_ context.Context, id string, f RecordFields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			r := &s.records[i]
			r.Website, r.Username, r.Category, r.Notes = f.Website, f.Username, f.Category, f.Notes
			r.Ciphertext, r.IV = f.Ciphertext, f.IV
			return id, nil
		}
	}
	return "", common.ErrorUnauthorized
}

func (s *memStore) DeleteCredential(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return id, nil
		}
	}
	return "", common.ErrorUnauthorized
}

func (s *memStore) record(id string) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r
		}
	}
	return Record{}
}

func (s *memStore) mutate(id string, fn func(r *Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			fn(&s.records[i])
		}
	}
}
