package credentials

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/go-kivik/kivik/v4"
)

const (
	docType      = "credential"
	findPageSize = 100
)

type credentialDoc struct {
	DocID      string    `json:"_id"`
	Rev        string    `json:"_rev,omitempty"`
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Website    string    `json:"website"`
	Username   string    `json:"username"`
	Ciphertext string    `json:"ciphertext"`
	IV         string    `json:"iv"`
	Category   string    `json:"category"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toDoc(c *models.Credential) credentialDoc {
	return credentialDoc{
		DocID:      docID(c.ID),
		Type:       docType,
		ID:         c.ID,
		UserID:     c.UserID,
		Website:    c.Website,
		Username:   c.Username,
		Ciphertext: c.Ciphertext,
		IV:         c.IV,
		Category:   c.Category,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (d *credentialDoc) model() *models.Credential {
	return &models.Credential{
		ID:         d.ID,
		UserID:     d.UserID,
		Website:    d.Website,
		Username:   d.Username,
		Ciphertext: d.Ciphertext,
		IV:         d.IV,
		Category:   d.Category,
		Notes:      d.Notes,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type CouchRepository struct {
	db *kivik.DB
}

func NewCouchRepository(db *kivik.DB) *CouchRepository {
	return &CouchRepository{db: db}
}

func docID(id string) string {
	return "credential:" + id
}

// EnsureIndex creates the Mango index used by List.
func (r *CouchRepository) EnsureIndex(ctx context.Context) error {
	index := map[string]any{"fields": []string{"type", "user_id"}}
	if err := r.db.CreateIndex(ctx, "credentials", "by-user", index); err != nil {
		return fmt.Errorf("couchdb error: %w", err)
	}
	return nil
}

// List pages through _find with a bookmark; CouchDB caps each response at
// the requested limit (25 when none is given).
func (r *CouchRepository) List(ctx context.Context, userID string) ([]*models.Credential, error) {
	result := make([]*models.Credential, 0)
	bookmark := ""
	for {
		query := map[string]any{
			"selector": map[string]any{"type": docType, "user_id": userID},
			"limit":    findPageSize,
		}
		if bookmark != "" {
			query["bookmark"] = bookmark
		}

		page, next, err := r.findPage(ctx, query)
		if err != nil {
			return nil, err
		}
		result = append(result, page...)

		if len(page) < findPageSize || next == "" || next == bookmark {
			break
		}
		bookmark = next
	}

	// The query carries no sort clause.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *CouchRepository) findPage(ctx context.Context, query map[string]any) ([]*models.Credential, string, error) {
	rows := r.db.Find(ctx, query)
	defer rows.Close()

	page := make([]*models.Credential, 0, findPageSize)
	for rows.Next() {
		var doc credentialDoc
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, "", fmt.Errorf("couchdb error: %w", err)
		}
		page = append(page, doc.model())
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("couchdb error: %w", err)
	}

	meta, err := rows.Metadata()
	if err != nil {
		return nil, "", fmt.Errorf("couchdb error: %w", err)
	}
	return page, meta.Bookmark, nil
}

func (r *CouchRepository) load(ctx context.Context, id string) (*credentialDoc, error) {
	var doc credentialDoc
	if err := r.db.Get(ctx, docID(id)).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("couchdb error: %w", err)
	}
	return &doc, nil
}

func (r *CouchRepository) Get(ctx context.Context, id string) (*models.Credential, error) {
	doc, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (r *CouchRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	now := time.Now().UTC()
	doc := toDoc(c)
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.db.Put(ctx, doc.DocID, doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusConflict {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("couchdb error: %w", err)
	}
	return doc.model(), nil
}

func (r *CouchRepository) Update(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	current, err := r.load(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if current.UserID != c.UserID {
		return nil, common.ErrorNotFound
	}

	doc := toDoc(c)
	doc.Rev = current.Rev
	doc.CreatedAt = current.CreatedAt
	doc.UpdatedAt = time.Now().UTC()

	if _, err := r.db.Put(ctx, doc.DocID, doc); err != nil {
		return nil, fmt.Errorf("couchdb error: %w", err)
	}
	return doc.model(), nil
}

func (r *CouchRepository) Delete(ctx context.Context, id, userID string) error {
	current, err := r.load(ctx, id)
	if err != nil {
		return err
	}
	if current.UserID != userID {
		return common.ErrorNotFound
	}
	if _, err := r.db.Delete(ctx, current.DocID, current.Rev); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return common.ErrorNotFound
		}
		return fmt.Errorf("couchdb error: %w", err)
	}
	return nil
}
