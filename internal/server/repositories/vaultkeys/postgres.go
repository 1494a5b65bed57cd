package vaultkeys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/dbx"
	"github.com/dmitrijs2005/passvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.VaultKey, error) {
	query :=
		`SELECT id, user_id, check_ciphertext, check_iv, created_at FROM vault_keys
		 WHERE user_id = $1`

	k := &models.VaultKey{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&k.ID, &k.UserID, &k.CheckCiphertext, &k.CheckIV, &k.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return k, nil
}

func (r *PostgresRepository) Create(ctx context.Context, k *models.VaultKey) (*models.VaultKey, error) {
	query :=
		`INSERT INTO vault_keys (id, user_id, check_ciphertext, check_iv)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO NOTHING
		 RETURNING created_at`

	out := *k
	err := r.db.QueryRowContext(ctx, query, k.ID, k.UserID, k.CheckCiphertext, k.CheckIV).Scan(&out.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &out, nil
}
