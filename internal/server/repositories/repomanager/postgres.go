// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/crmkeeper/internal/dbx"
	"github.com/dmitrijs2005/crmkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/activities"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/audits"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/leads"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/opportunities"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/sequences"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/crmkeeper/internal/server/sequence"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Contacts(db dbx.DBTX) contacts.Repository {
	return contacts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Leads(db dbx.DBTX) leads.Repository {
	return leads.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Opportunities(db dbx.DBTX) opportunities.Repository {
	return opportunities.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Activities(db dbx.DBTX) activities.Repository {
	return activities.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewPostgresRepository(db)
}

// Audits returns the append-only audit trail store bound to the provided DBTX.
func (m *PostgresRepositoryManager) Audits(db dbx.DBTX) audits.Repository {
	return audits.NewPostgresRepository(db)
}

// Sequences returns the identifier counters of orgID bound to the provided DBTX.
func (m *PostgresRepositoryManager) Sequences(db dbx.DBTX, orgID string) sequence.Store {
	return sequences.NewPostgresRepository(db, orgID)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
