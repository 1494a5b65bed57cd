// Package services holds the server-side business logic of passvault. The
// server stores salts, key checks and ciphertext/IV pairs for the
// authenticated user and never sees a plaintext secret or a derived key.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/backup"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// newID is a seam for deterministic ids in tests.
var newID = func() string { return uuid.NewString() }

type VaultService struct {
	repomanager repomanager.RepositoryManager
	backups     backup.Exporter
	validate    *validator.Validate
	logger      logging.Logger
}

func NewVaultService(m repomanager.RepositoryManager, backups backup.Exporter, logger logging.Logger) *VaultService {
	if backups == nil {
		backups = backup.Disabled{}
	}
	return &VaultService{
		repomanager: m,
		backups:     backups,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

func validationError(err error) error {
	return fmt.Errorf("%w: %v", common.ErrorValidation, err)
}

func requireUser(userID string) error {
	if userID == "" {
		return common.ErrorUnauthenticated
	}
	return nil
}

// checkLength verifies that text is base64 of exactly n bytes.
func checkLength(field, text string, n int) error {
	b, err := cryptox.TextToBytes(text)
	if err != nil {
		return validationError(fmt.Errorf("%s: %w", field, err))
	}
	if len(b) != n {
		return validationError(fmt.Errorf("%s must be %d bytes, got %d", field, n, len(b)))
	}
	return nil
}

// GetSalt returns the stored salt text or common.ErrorNotFound.
func (s *VaultService) GetSalt(ctx context.Context, userID string) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	settings, err := s.repomanager.Repositories().Settings.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return settings.Salt, nil
}

// SetSalt stores salt for a user that has none yet and returns the id of the
// stored settings. A user that already has a salt keeps it; the existing id
// is returned and salt is discarded.
func (s *VaultService) SetSalt(ctx context.Context, userID, salt string) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	if err := checkLength("salt", salt, cryptox.SaltSize); err != nil {
		return "", err
	}

	id := newID()
	stored, err := s.repomanager.Repositories().Settings.CreateIfAbsent(ctx, &models.VaultSettings{
		ID:     id,
		UserID: userID,
		Salt:   salt,
	})
	if err != nil {
		return "", err
	}
	if stored.ID != id {
		s.logger.Info(ctx, "salt already set, keeping existing", "user", userID)
	}
	return stored.ID, nil
}

func (s *VaultService) GetVaultKey(ctx context.Context, userID string) (*models.VaultKey, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.repomanager.Repositories().VaultKeys.Get(ctx, userID)
}

// InitializeVaultKey stores the key check. It can be done once per user.
func (s *VaultService) InitializeVaultKey(ctx context.Context, userID, ciphertext, iv string) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	if ciphertext == "" {
		return "", validationError(errors.New("check ciphertext is required"))
	}
	if _, err := cryptox.TextToBytes(ciphertext); err != nil {
		return "", validationError(err)
	}
	if err := checkLength("iv", iv, cryptox.NonceSize); err != nil {
		return "", err
	}

	k, err := s.repomanager.Repositories().VaultKeys.Create(ctx, &models.VaultKey{
		ID:              newID(),
		UserID:          userID,
		CheckCiphertext: ciphertext,
		CheckIV:         iv,
	})
	if err != nil {
		return "", err
	}
	s.logger.Info(ctx, "vault initialized", "user", userID)
	return k.ID, nil
}

func (s *VaultService) ListCredentials(ctx context.Context, userID string) ([]*models.Credential, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.repomanager.Repositories().Credentials.List(ctx, userID)
}

// checkFields validates f and fills in the default category.
func (s *VaultService) checkFields(f *models.CredentialFields) error {
	if err := s.validate.Struct(f); err != nil {
		return validationError(err)
	}
	if err := checkLength("iv", f.IV, cryptox.NonceSize); err != nil {
		return err
	}
	if f.Category == "" {
		f.Category = common.DefaultCategory
	}
	return nil
}

func (s *VaultService) CreateCredential(ctx context.Context, userID string, f models.CredentialFields) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	if err := s.checkFields(&f); err != nil {
		return "", err
	}

	c, err := s.repomanager.Repositories().Credentials.Create(ctx, &models.Credential{
		ID:         newID(),
		UserID:     userID,
		Website:    f.Website,
		Username:   f.Username,
		Ciphertext: f.Ciphertext,
		IV:         f.IV,
		Category:   f.Category,
		Notes:      f.Notes,
	})
	if err != nil {
		return "", err
	}
	s.logger.Debug(ctx, "credential created", "user", userID, "id", c.ID)
	return c.ID, nil
}

// authorize loads credential id and checks it belongs to userID. Missing and
// foreign records both yield common.ErrorUnauthorized.
func (s *VaultService) authorize(ctx context.Context, repos repomanager.Repositories, id, userID string) (*models.Credential, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, common.ErrorUnauthorized
	}

	c, err := repos.Credentials.Get(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		s.logger.Warn(ctx, "credential access denied", "user", userID, "id", id)
		return nil, common.ErrorUnauthorized
	}
	return c, nil
}

// UpdateCredential replaces every mutable field, IV included.
func (s *VaultService) UpdateCredential(ctx context.Context, id, userID string, f models.CredentialFields) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	if err := s.checkFields(&f); err != nil {
		return "", err
	}

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		current, err := s.authorize(ctx, repos, id, userID)
		if err != nil {
			return err
		}
		_, err = repos.Credentials.Update(ctx, &models.Credential{
			ID:         current.ID,
			UserID:     userID,
			Website:    f.Website,
			Username:   f.Username,
			Ciphertext: f.Ciphertext,
			IV:         f.IV,
			Category:   f.Category,
			Notes:      f.Notes,
		})
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return err
	})
	if err != nil {
		return "", err
	}
	s.logger.Debug(ctx, "credential updated", "user", userID, "id", id)
	return id, nil
}

func (s *VaultService) DeleteCredential(ctx context.Context, id, userID string) (string, error) {
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		if _, err := s.authorize(ctx, repos, id, userID); err != nil {
			return err
		}
		err := repos.Credentials.Delete(ctx, id, userID)
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return err
	})
	if err != nil {
		return "", err
	}
	s.logger.Debug(ctx, "credential deleted", "user", userID, "id", id)
	return id, nil
}

// ExportBackup snapshots the user's vault inside one read transaction and
// hands it to the backup exporter.
func (s *VaultService) ExportBackup(ctx context.Context, userID string) (*backup.Receipt, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	snap := &backup.Snapshot{Version: backup.SnapshotVersion, UserID: userID, CreatedAt: time.Now().UTC()}
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		settings, err := repos.Settings.Get(ctx, userID)
		switch {
		case err == nil:
			snap.Salt = settings.Salt
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		key, err := repos.VaultKeys.Get(ctx, userID)
		switch {
		case err == nil:
			snap.KeyCheck = key
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		snap.Credentials, err = repos.Credentials.List(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if snap.Salt == "" {
		return nil, common.ErrorNotFound
	}

	receipt, err := s.backups.Export(ctx, snap)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "backup exported", "user", userID, "key", receipt.Key, "records", len(snap.Credentials))
	return receipt, nil
}
