package vaultkeys

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/go-kivik/kivik/v4"
)

type keyDoc struct {
	DocID           string    `json:"_id"`
	Rev             string    `json:"_rev,omitempty"`
	Type            string    `json:"type"`
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CheckCiphertext string    `json:"check_ciphertext"`
	CheckIV         string    `json:"check_iv"`
	CreatedAt       time.Time `json:"created_at"`
}

func (d *keyDoc) model() *models.VaultKey {
	return &models.VaultKey{
		ID:              d.ID,
		UserID:          d.UserID,
		CheckCiphertext: d.CheckCiphertext,
		CheckIV:         d.CheckIV,
		CreatedAt:       d.CreatedAt,
	}
}

type CouchRepository struct {
	db *kivik.DB
}

func NewCouchRepository(db *kivik.DB) *CouchRepository {
	return &CouchRepository{db: db}
}

func docID(userID string) string {
	return "vault_key:" + userID
}

func (r *CouchRepository) Get(ctx context.Context, userID string) (*models.VaultKey, error) {
	var doc keyDoc
	if err := r.db.Get(ctx, docID(userID)).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("couchdb error: %w", err)
	}
	return doc.model(), nil
}

func (r *CouchRepository) Create(ctx context.Context, k *models.VaultKey) (*models.VaultKey, error) {
	doc := keyDoc{
		DocID:           docID(k.UserID),
		Type:            "vault_key",
		ID:              k.ID,
		UserID:          k.UserID,
		CheckCiphertext: k.CheckCiphertext,
		CheckIV:         k.CheckIV,
		CreatedAt:       time.Now().UTC(),
	}

	if _, err := r.db.Put(ctx, doc.DocID, doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusConflict {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("couchdb error: %w", err)
	}
	return doc.model(), nil
}
