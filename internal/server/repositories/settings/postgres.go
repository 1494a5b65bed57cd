package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/dbx"
	"github.com/dmitrijs2005/passvault/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.VaultSettings, error) {
	query :=
		`SELECT id, user_id, salt, created_at FROM vault_settings
		 WHERE user_id = $1`

	s := &models.VaultSettings{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.ID, &s.UserID, &s.Salt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// CreateIfAbsent inserts and reads back in one statement. When a concurrent
// insert for the same user commits while this one waits on the unique index,
// neither branch of the CTE sees a row (they share the statement snapshot), so
// the stored row is read again in a new statement.
func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, s *models.VaultSettings) (*models.VaultSettings, error) {
	query :=
		`WITH ins AS (
			INSERT INTO vault_settings (id, user_id, salt)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO NOTHING
			RETURNING id, user_id, salt, created_at
		)
		SELECT id, user_id, salt, created_at FROM ins
		UNION ALL
		SELECT id, user_id, salt, created_at FROM vault_settings WHERE user_id = $2
		LIMIT 1`

	out := &models.VaultSettings{}
	err := r.db.QueryRowContext(ctx, query, s.ID, s.UserID, s.Salt).
		Scan(&out.ID, &out.UserID, &out.Salt, &out.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return r.Get(ctx, s.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
