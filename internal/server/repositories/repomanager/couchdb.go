package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/settings"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/vaultkeys"
	"github.com/go-kivik/kivik/v4"
	_ "github.com/go-kivik/kivik/v4/couchdb"
)

// CouchRepositoryManager keeps every record type in one CouchDB database,
// told apart by a "type" field.
type CouchRepositoryManager struct {
	client *kivik.Client
	dbName string
	repos  Repositories
	creds  *credentials.CouchRepository
}

// OpenCouch connects to the CouchDB server at url and uses database dbName.
// The database is created by RunMigrations if it does not exist.
func OpenCouch(url, dbName string) (*CouchRepositoryManager, error) {
	client, err := kivik.New("couch", url)
	if err != nil {
		return nil, fmt.Errorf("couchdb connect error: %w", err)
	}
	return NewCouchRepositoryManager(client, dbName), nil
}

func NewCouchRepositoryManager(client *kivik.Client, dbName string) *CouchRepositoryManager {
	db := client.DB(dbName)
	creds := credentials.NewCouchRepository(db)
	return &CouchRepositoryManager{
		client: client,
		dbName: dbName,
		creds:  creds,
		repos: Repositories{
			Settings:    settings.NewCouchRepository(db),
			VaultKeys:   vaultkeys.NewCouchRepository(db),
			Credentials: creds,
		},
	}
}

func (m *CouchRepositoryManager) Repositories() Repositories {
	return m.repos
}

// WithTx has no transaction to offer; document writes are individually
// atomic.
func (m *CouchRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return fn(ctx, m.repos)
}

// RunMigrations creates the database and its query index.
func (m *CouchRepositoryManager) RunMigrations(ctx context.Context) error {
	exists, err := m.client.DBExists(ctx, m.dbName)
	if err != nil {
		return fmt.Errorf("couchdb error: %w", err)
	}
	if !exists {
		if err := m.client.CreateDB(ctx, m.dbName); err != nil {
			return fmt.Errorf("couchdb error: %w", err)
		}
	}
	return m.creds.EnsureIndex(ctx)
}

func (m *CouchRepositoryManager) Close() error {
	return m.client.Close()
}
