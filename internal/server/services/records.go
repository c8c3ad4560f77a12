package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/dbx"
	"github.com/dmitrijs2005/crmkeeper/internal/server/audit"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// mutable is the repository surface shared by audited record kinds.
type mutable[T any] interface {
	Insert(ctx context.Context, e *T) error
	Update(ctx context.Context, e *T) error
	SoftDelete(ctx context.Context, orgID, id, modifiedBy string, at time.Time) error
	FindByID(ctx context.Context, orgID, id string) (*T, error)
}

type record[T any] interface {
	*T
	Meta() *models.Base
}

type kind[T any] struct {
	schema *audit.Schema[T]
	repo   func(rm repomanager.RepositoryManager, db dbx.DBTX) mutable[T]
}

var (
	accountKind = kind[models.Account]{
		schema: audit.Accounts,
		repo: func(rm repomanager.RepositoryManager, db dbx.DBTX) mutable[models.Account] {
			return rm.Accounts(db)
		},
	}
	contactKind = kind[models.Contact]{
		schema: audit.Contacts,
		repo: func(rm repomanager.RepositoryManager, db dbx.DBTX) mutable[models.Contact] {
			return rm.Contacts(db)
		},
	}
	leadKind = kind[models.Lead]{
		schema: audit.Leads,
		repo: func(rm repomanager.RepositoryManager, db dbx.DBTX) mutable[models.Lead] {
			return rm.Leads(db)
		},
	}
	opportunityKind = kind[models.Opportunity]{
		schema: audit.Opportunities,
		repo: func(rm repomanager.RepositoryManager, db dbx.DBTX) mutable[models.Opportunity] {
			return rm.Opportunities(db)
		},
	}
)

// stamp fills the bookkeeping columns of a new record.
func (s *CRMService) stamp(meta *models.Base, caller Caller) {
	now := s.now().UTC()
	meta.ID = uuid.NewString()
	meta.Code = ""
	meta.OrganizationID = caller.OrganizationID
	meta.ModifiedBy = caller.Email
	meta.CreatedAt, meta.UpdatedAt = now, now
	meta.DeletedAt = nil
}

func create[T any, P record[T]](ctx context.Context, s *CRMService, caller Caller, k kind[T], e *T) (*T, error) {
	if e == nil {
		return nil, common.ErrorInvalidEntity
	}
	meta := P(e).Meta()
	s.stamp(meta, caller)
	if err := k.schema.Seal(s.cipher, e); err != nil {
		return nil, err
	}

	err := s.issue(ctx, caller, k.schema.Entity, func(ctx context.Context, tx dbx.DBTX, code string) error {
		meta.Code = code
		if err := k.repo(s.repomanager, tx).Insert(ctx, e); err != nil {
			return err
		}
		_, err := s.audit.RecordInsert(ctx, s.session(tx, caller), k.schema.Snapshot(e))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", k.schema.Label, err)
	}

	s.logger.Info(ctx, "record created", "entity", k.schema.Entity, "id", meta.ID, "code", meta.Code)
	openRecord(ctx, s, k.schema, e)
	return e, nil
}

// update loads the stored record, lets apply edit a decrypted copy and
// writes it back re-encrypted. Bookkeeping columns cannot be changed by
// apply. An undecryptable field apply did not touch keeps its ciphertext.
func update[T any, P record[T]](ctx context.Context, s *CRMService, caller Caller, k kind[T], id string, apply func(*T) error) (*T, error) {
	var result *T
	err := s.inTx(ctx, caller, func(ctx context.Context, tx dbx.DBTX) error {
		repo := k.repo(s.repomanager, tx)
		stored, err := repo.FindByID(ctx, caller.OrganizationID, id)
		if err != nil {
			return err
		}
		before := k.schema.Snapshot(stored)
		base := *P(stored).Meta()

		next := *stored
		undecryptable := openRecord(ctx, s, k.schema, &next)
		if err := apply(&next); err != nil {
			return fmt.Errorf("%w: %v", common.ErrorInvalidEntity, err)
		}

		meta := P(&next).Meta()
		*meta = base
		meta.ModifiedBy = caller.Email
		meta.UpdatedAt = s.now().UTC()

		if err := k.schema.Reseal(s.cipher, &next, stored, undecryptable); err != nil {
			return err
		}
		if err := repo.Update(ctx, &next); err != nil {
			return err
		}
		if _, err := s.audit.RecordUpdate(ctx, s.session(tx, caller), before, k.schema.Snapshot(&next)); err != nil {
			return err
		}
		result = &next
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", k.schema.Label, id, err)
	}

	s.logger.Info(ctx, "record updated", "entity", k.schema.Entity, "id", id)
	openRecord(ctx, s, k.schema, result)
	return result, nil
}

func remove[T any, P record[T]](ctx context.Context, s *CRMService, caller Caller, k kind[T], id string) error {
	err := s.inTx(ctx, caller, func(ctx context.Context, tx dbx.DBTX) error {
		repo := k.repo(s.repomanager, tx)
		stored, err := repo.FindByID(ctx, caller.OrganizationID, id)
		if err != nil {
			return err
		}
		if err := repo.SoftDelete(ctx, caller.OrganizationID, id, caller.Email, s.now().UTC()); err != nil {
			return err
		}
		_, err = s.audit.RecordDelete(ctx, s.session(tx, caller), k.schema.Snapshot(stored))
		return err
	})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", k.schema.Label, id, err)
	}

	s.logger.Info(ctx, "record deleted", "entity", k.schema.Entity, "id", id)
	return nil
}

func get[T any, P record[T]](ctx context.Context, s *CRMService, caller Caller, k kind[T], id string) (*T, error) {
	db, err := s.db(ctx, caller)
	if err != nil {
		return nil, err
	}
	e, err := k.repo(s.repomanager, db).FindByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", k.schema.Label, id, err)
	}
	openRecord(ctx, s, k.schema, e)
	return e, nil
}

// openRecord decrypts e in place. Fields that cannot be decrypted keep their
// stored value and are returned.
func openRecord[T any](ctx context.Context, s *CRMService, schema *audit.Schema[T], e *T) []string {
	failed := schema.Open(s.cipher, e)
	if len(failed) > 0 {
		s.logger.Warn(ctx, "fields left encrypted", "entity", schema.Entity, "id", schema.ID(e), "fields", failed)
	}
	return failed
}

func (s *CRMService) CreateAccount(ctx context.Context, caller Caller, a *models.Account) (*models.Account, error) {
	return create(ctx, s, caller, accountKind, a)
}

func (s *CRMService) UpdateAccount(ctx context.Context, caller Caller, id string, apply func(*models.Account) error) (*models.Account, error) {
	return update(ctx, s, caller, accountKind, id, apply)
}

func (s *CRMService) DeleteAccount(ctx context.Context, caller Caller, id string) error {
	return remove(ctx, s, caller, accountKind, id)
}

func (s *CRMService) GetAccount(ctx context.Context, caller Caller, id string) (*models.Account, error) {
	return get(ctx, s, caller, accountKind, id)
}

func (s *CRMService) CreateContact(ctx context.Context, caller Caller, c *models.Contact) (*models.Contact, error) {
	return create(ctx, s, caller, contactKind, c)
}

func (s *CRMService) UpdateContact(ctx context.Context, caller Caller, id string, apply func(*models.Contact) error) (*models.Contact, error) {
	return update(ctx, s, caller, contactKind, id, apply)
}

func (s *CRMService) DeleteContact(ctx context.Context, caller Caller, id string) error {
	return remove(ctx, s, caller, contactKind, id)
}

func (s *CRMService) GetContact(ctx context.Context, caller Caller, id string) (*models.Contact, error) {
	return get(ctx, s, caller, contactKind, id)
}

func (s *CRMService) CreateLead(ctx context.Context, caller Caller, l *models.Lead) (*models.Lead, error) {
	return create(ctx, s, caller, leadKind, l)
}

func (s *CRMService) UpdateLead(ctx context.Context, caller Caller, id string, apply func(*models.Lead) error) (*models.Lead, error) {
	return update(ctx, s, caller, leadKind, id, apply)
}

func (s *CRMService) DeleteLead(ctx context.Context, caller Caller, id string) error {
	return remove(ctx, s, caller, leadKind, id)
}

func (s *CRMService) GetLead(ctx context.Context, caller Caller, id string) (*models.Lead, error) {
	return get(ctx, s, caller, leadKind, id)
}

func (s *CRMService) CreateOpportunity(ctx context.Context, caller Caller, o *models.Opportunity) (*models.Opportunity, error) {
	return create(ctx, s, caller, opportunityKind, o)
}

func (s *CRMService) UpdateOpportunity(ctx context.Context, caller Caller, id string, apply func(*models.Opportunity) error) (*models.Opportunity, error) {
	return update(ctx, s, caller, opportunityKind, id, apply)
}

func (s *CRMService) DeleteOpportunity(ctx context.Context, caller Caller, id string) error {
	return remove(ctx, s, caller, opportunityKind, id)
}

func (s *CRMService) GetOpportunity(ctx context.Context, caller Caller, id string) (*models.Opportunity, error) {
	return get(ctx, s, caller, opportunityKind, id)
}
