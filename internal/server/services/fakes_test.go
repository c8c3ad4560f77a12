package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/dbx"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
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

// --- record repositories ---

type memRepo[T any, P record[T]] struct {
	mu         sync.Mutex
	entity     models.EntityType
	seq        *sequence.MemoryStore
	rows       map[string]T
	insertErrs []error
}

func newMemRepo[T any, P record[T]](entity models.EntityType, seq *sequence.MemoryStore) *memRepo[T, P] {
	return &memRepo[T, P]{entity: entity, seq: seq, rows: map[string]T{}}
}

func (r *memRepo[T, P]) Insert(_ context.Context, e *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.insertErrs) > 0 {
		err := r.insertErrs[0]
		r.insertErrs = r.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	meta := P(e).Meta()
	r.rows[meta.ID] = *e
	r.seq.Record(r.entity, meta.Code)
	return nil
}

func (r *memRepo[T, P]) Update(_ context.Context, e *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	meta := P(e).Meta()
	cur, ok := r.rows[meta.ID]
	if !ok || P(&cur).Meta().Deleted() {
		return common.ErrorNotFound
	}
	r.rows[meta.ID] = *e
	return nil
}

func (r *memRepo[T, P]) SoftDelete(_ context.Context, orgID, id, modifiedBy string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[id]
	meta := P(&cur).Meta()
	if !ok || meta.OrganizationID != orgID || meta.Deleted() {
		return common.ErrorNotFound
	}
	meta.DeletedAt = &at
	meta.ModifiedBy = modifiedBy
	r.rows[id] = cur
	return nil
}

func (r *memRepo[T, P]) FindByID(_ context.Context, orgID, id string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	meta := P(&cur).Meta()
	if meta.OrganizationID != orgID || meta.Deleted() {
		return nil, common.ErrorNotFound
	}
	return &cur, nil
}

// stored returns the row as persisted, soft-deleted or not.
func (r *memRepo[T, P]) stored(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	return v, ok
}

type memUsers struct {
	mu   sync.Mutex
	rows map[string]models.User
	err  error
}

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u.ID = fmt.Sprintf("u-%d", len(r.rows)+1)
	u.CreatedAt = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	r.rows[u.ID] = *u
	out := *u
	return &out, nil
}

func (r *memUsers) FindByID(_ context.Context, orgID, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok || u.OrganizationID != orgID {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

type memAudits struct {
	mu        sync.Mutex
	rows      []models.AuditRecord
	insertErr error
}

func (m *memAudits) Insert(_ context.Context, rec *models.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, r := range m.rows {
		if r.Chain() == rec.Chain() && r.Sequence == rec.Sequence {
			return fmt.Errorf("duplicate audit %s/%s/%d", rec.OrganizationID, rec.AuditID, rec.Sequence)
		}
	}
	m.rows = append(m.rows, *rec)
	return nil
}

func (m *memAudits) LatestByAuditID(_ context.Context, chain models.AuditChain, typ models.AuditType) (*models.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out *models.AuditRecord
	for i := range m.rows {
		r := m.rows[i]
		if r.Chain() != chain || (typ != "" && r.AuditType != typ) {
			continue
		}
		if out == nil || r.Sequence > out.Sequence {
			out = &r
		}
	}
	if out == nil {
		return nil, common.ErrorNotFound
	}
	return out, nil
}

func (m *memAudits) ListByEntity(_ context.Context, orgID string, kind models.EntityType, id string) ([]*models.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !(&models.AuditRecord{}).SetEntity(kind, id) {
		return nil, common.ErrorUnknownEntityType
	}
	var out []*models.AuditRecord
	for i := range m.rows {
		r := m.rows[i]
		k, rid := r.Entity()
		if r.OrganizationID == orgID && k == kind && rid == id {
			out = append(out, &r)
		}
	}
	return out, nil
}

// --- manager, tenants, archive ---

type fakeManager struct {
	seq           *sequence.MemoryStore
	users         *memUsers
	accounts      *memRepo[models.Account, *models.Account]
	contacts      *memRepo[models.Contact, *models.Contact]
	leads         *memRepo[models.Lead, *models.Lead]
	opportunities *memRepo[models.Opportunity, *models.Opportunity]
	activities    *memRepo[models.Activity, *models.Activity]
	notes         *memRepo[models.Note, *models.Note]
	audits        *memAudits
}

func newFakeManager() *fakeManager {
	seq := sequence.NewMemoryStore()
	return &fakeManager{
		seq:           seq,
		users:         &memUsers{rows: map[string]models.User{}},
		accounts:      newMemRepo[models.Account, *models.Account](models.EntityAccount, seq),
		contacts:      newMemRepo[models.Contact, *models.Contact](models.EntityContact, seq),
		leads:         newMemRepo[models.Lead, *models.Lead](models.EntityLead, seq),
		opportunities: newMemRepo[models.Opportunity, *models.Opportunity](models.EntityOpportunity, seq),
		activities:    newMemRepo[models.Activity, *models.Activity](models.EntityActivity, seq),
		notes:         newMemRepo[models.Note, *models.Note](models.EntityNote, seq),
		audits:        &memAudits{},
	}
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeManager) Accounts(dbx.DBTX) accounts.Repository           { return m.accounts }
func (m *fakeManager) Contacts(dbx.DBTX) contacts.Repository           { return m.contacts }
func (m *fakeManager) Leads(dbx.DBTX) leads.Repository                 { return m.leads }
func (m *fakeManager) Opportunities(dbx.DBTX) opportunities.Repository { return m.opportunities }
func (m *fakeManager) Activities(dbx.DBTX) activities.Repository       { return m.activities }
func (m *fakeManager) Notes(dbx.DBTX) notes.Repository                 { return m.notes }
func (m *fakeManager) Audits(dbx.DBTX) audits.Repository               { return m.audits }
func (m *fakeManager) Sequences(dbx.DBTX, string) sequence.Store       { return m.seq }

type fakeTenants struct {
	db   *sql.DB
	err  error
	orgs []string
}

func (f *fakeTenants) DB(_ context.Context, orgID string) (*sql.DB, error) {
	f.orgs = append(f.orgs, orgID)
	return f.db, f.err
}

type fakeArchive struct {
	key  string
	body []byte
	err  error
}

func (f *fakeArchive) Put(_ context.Context, key string, body []byte) error {
	f.key, f.body = key, body
	return f.err
}
