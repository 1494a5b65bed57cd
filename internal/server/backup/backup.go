// Package backup exports encrypted vault snapshots to S3-compatible object
// storage. A snapshot holds the salt, the key check and the credential
// records exactly as stored: ciphertext only.
package backup

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/passvault/internal/server/models"
)

// SnapshotVersion is bumped when the snapshot layout changes.
const SnapshotVersion = 1

// URLExpiry is how long a presigned download link stays valid.
const URLExpiry = 15 * time.Minute

// ErrNotConfigured is returned when no bucket is configured.
var ErrNotConfigured = errors.New("backup storage not configured")

type Snapshot struct {
	Version     int                  `json:"version"`
	UserID      string               `json:"user_id"`
	CreatedAt   time.Time            `json:"created_at"`
	Salt        string               `json:"salt,omitempty"`
	KeyCheck    *models.VaultKey     `json:"key_check,omitempty"`
	Credentials []*models.Credential `json:"credentials"`
}

// Receipt tells the caller where the snapshot went.
type Receipt struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Exporter interface {
	Export(ctx context.Context, snap *Snapshot) (*Receipt, error)
}

// Disabled is an Exporter for deployments without object storage.
type Disabled struct{}

func (Disabled) Export(ctx context.Context, snap *Snapshot) (*Receipt, error) {
	return nil, ErrNotConfigured
}
