package credentials

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "user_id", "website", "username", "ciphertext", "iv", "category", "notes", "created_at", "updated_at"}

const (
	listQuery   = `(?s)^SELECT\s+id,.*FROM\s+credentials\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*id$`
	getQuery    = `(?s)^SELECT\s+id,.*FROM\s+credentials\s+WHERE\s+id\s*=\s*\$1$`
	insertQuery = `(?s)^INSERT\s+INTO\s+credentials\s+\(id,\s*user_id,\s*website,\s*username,\s*ciphertext,\s*iv,\s*category,\s*notes\).*RETURNING\s+created_at,\s*updated_at$`
	updateQuery = `(?s)^UPDATE\s+credentials\s+SET\s+website\s*=\s*\$3,.*iv\s*=\s*\$6,.*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+RETURNING\s+created_at,\s*updated_at$`
	deleteQuery = `^DELETE\s+FROM\s+credentials\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func strPtr(s string) *string { return &s }

func TestPostgres_List(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	mock.ExpectQuery(listQuery).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("c1", "u1", "example.com", "alice", "Y3Qx", "aXYx", "personal", nil, t1, t1).
			AddRow("c2", "u1", "bank.com", "alice", "Y3Qy", "aXYy", "finance", "pin in drawer", t2, t2))

	got, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)

	want := []*models.Credential{
		{ID: "c1", UserID: "u1", Website: "example.com", Username: "alice", Ciphertext: "Y3Qx", IV: "aXYx", Category: "personal", CreatedAt: t1, UpdatedAt: t1},
		{ID: "c2", UserID: "u1", Website: "bank.com", Username: "alice", Ciphertext: "Y3Qy", IV: "aXYy", Category: "finance", Notes: strPtr("pin in drawer"), CreatedAt: t2, UpdatedAt: t2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_List_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(listQuery).WithArgs("u1").WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPostgres_List_Errors(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(listQuery).WithArgs("u1").WillReturnError(errors.New("db down"))
	_, err := repo.List(context.Background(), "u1")
	assert.ErrorContains(t, err, "db error: db down")

	mock.ExpectQuery(listQuery).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("c1", "u1", "w", "u", "ct", "iv", "personal", nil, time.Now(), time.Now()).
			RowError(0, errors.New("row broke")))
	_, err = repo.List(context.Background(), "u1")
	assert.ErrorContains(t, err, "row broke")
}

func TestPostgres_Get(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(getQuery).WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("c1", "u2", "w", "u", "ct", "iv", "work", nil, now, now))

	got, err := repo.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)
	assert.Nil(t, got.Notes)

	mock.ExpectQuery(getQuery).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgres_Create(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	in := &models.Credential{ID: "c1", UserID: "u1", Website: "w", Username: "u", Ciphertext: "ct", IV: "iv", Category: "personal", Notes: strPtr("n")}
	mock.ExpectQuery(insertQuery).
		WithArgs("c1", "u1", "w", "u", "ct", "iv", "personal", in.Notes).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	got, err := repo.Create(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.Equal(t, "ct", got.Ciphertext)
	assert.True(t, in.CreatedAt.IsZero(), "input must not be mutated")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Create_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("boom"))

	_, err := repo.Create(context.Background(), &models.Credential{ID: "c1", UserID: "u1"})
	assert.ErrorContains(t, err, "db error: boom")
}

func TestPostgres_Update(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Now().Add(-time.Hour)
	updated := time.Now()

	in := &models.Credential{ID: "c1", UserID: "u1", Website: "w2", Username: "u2", Ciphertext: "ct2", IV: "iv2", Category: "work"}
	mock.ExpectQuery(updateQuery).
		WithArgs("c1", "u1", "w2", "u2", "ct2", "iv2", "work", in.Notes).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, updated))

	got, err := repo.Update(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "iv2", got.IV)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Update_NotOwned(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(updateQuery).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	_, err := repo.Update(context.Background(), &models.Credential{ID: "c1", UserID: "intruder"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgres_Delete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(deleteQuery).WithArgs("c1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "c1", "u1"))

	mock.ExpectExec(deleteQuery).WithArgs("c1", "intruder").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "c1", "intruder"), common.ErrorNotFound)

	mock.ExpectExec(deleteQuery).WithArgs("c1", "u1").WillReturnError(errors.New("boom"))
	assert.ErrorContains(t, repo.Delete(context.Background(), "c1", "u1"), "db error: boom")

	mock.ExpectExec(deleteQuery).WithArgs("c1", "u1").WillReturnResult(sqlmock.NewErrorResult(errors.New("no count")))
	assert.ErrorContains(t, repo.Delete(context.Background(), "c1", "u1"), "no count")

	require.NoError(t, mock.ExpectationsWereMet())
}
