package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/crmkeeper/internal/dbx"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/activities"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/audits"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/leads"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/opportunities"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/crmkeeper/internal/server/sequence"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	Contacts(db dbx.DBTX) contacts.Repository
	Leads(db dbx.DBTX) leads.Repository
	Opportunities(db dbx.DBTX) opportunities.Repository
	Activities(db dbx.DBTX) activities.Repository
	Notes(db dbx.DBTX) notes.Repository
	Audits(db dbx.DBTX) audits.Repository
	Sequences(db dbx.DBTX, orgID string) sequence.Store
}
