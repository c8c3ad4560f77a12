package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
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
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	var _ RepositoryManager = NewPostgresRepositoryManager()
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{}

	if _, ok := m.Users(db).(*users.PostgresRepository); !ok {
		t.Fatal("Users() wrong type")
	}
	if _, ok := m.Accounts(db).(*accounts.PostgresRepository); !ok {
		t.Fatal("Accounts() wrong type")
	}
	if _, ok := m.Contacts(db).(*contacts.PostgresRepository); !ok {
		t.Fatal("Contacts() wrong type")
	}
	if _, ok := m.Leads(db).(*leads.PostgresRepository); !ok {
		t.Fatal("Leads() wrong type")
	}
	if _, ok := m.Opportunities(db).(*opportunities.PostgresRepository); !ok {
		t.Fatal("Opportunities() wrong type")
	}
	if _, ok := m.Activities(db).(*activities.PostgresRepository); !ok {
		t.Fatal("Activities() wrong type")
	}
	if _, ok := m.Notes(db).(*notes.PostgresRepository); !ok {
		t.Fatal("Notes() wrong type")
	}
	if _, ok := m.Audits(db).(*audits.PostgresRepository); !ok {
		t.Fatal("Audits() wrong type")
	}
	if _, ok := m.Sequences(db, "org").(*sequences.PostgresRepository); !ok {
		t.Fatal("Sequences() wrong type")
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.Migrations.ReadDir(".")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no migrations embedded")
	}
}
