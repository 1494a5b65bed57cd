package settings

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/go-kivik/kivik/v4"
)

type settingsDoc struct {
	DocID     string    `json:"_id"`
	Rev       string    `json:"_rev,omitempty"`
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Salt      string    `json:"salt"`
	CreatedAt time.Time `json:"created_at"`
}

func (d *settingsDoc) model() *models.VaultSettings {
	return &models.VaultSettings{ID: d.ID, UserID: d.UserID, Salt: d.Salt, CreatedAt: d.CreatedAt}
}

// CouchRepository keeps one document per user, keyed by user id, so the
// document store itself rejects a second salt with a conflict.
type CouchRepository struct {
	db *kivik.DB
}

func NewCouchRepository(db *kivik.DB) *CouchRepository {
	return &CouchRepository{db: db}
}

func docID(userID string) string {
	return "vault_settings:" + userID
}

func (r *CouchRepository) Get(ctx context.Context, userID string) (*models.VaultSettings, error) {
	var doc settingsDoc
	if err := r.db.Get(ctx, docID(userID)).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("couchdb error: %w", err)
	}
	return doc.model(), nil
}

func (r *CouchRepository) CreateIfAbsent(ctx context.Context, s *models.VaultSettings) (*models.VaultSettings, error) {
	doc := settingsDoc{
		DocID:     docID(s.UserID),
		Type:      "vault_settings",
		ID:        s.ID,
		UserID:    s.UserID,
		Salt:      s.Salt,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.Put(ctx, doc.DocID, doc)
	if err == nil {
		return doc.model(), nil
	}
	if kivik.HTTPStatus(err) != http.StatusConflict {
		return nil, fmt.Errorf("couchdb error: %w", err)
	}
	return r.Get(ctx, s.UserID)
}
