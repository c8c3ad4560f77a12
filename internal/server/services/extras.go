package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/dbx"
	"github.com/dmitrijs2005/crmkeeper/internal/server/audit"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

// Activities, notes and users are not audited. Activities and notes still
// receive business identifiers.

func (s *CRMService) CreateActivity(ctx context.Context, caller Caller, a *models.Activity) (*models.Activity, error) {
	if a == nil {
		return nil, common.ErrorInvalidEntity
	}
	s.stamp(&a.Base, caller)

	err := s.issue(ctx, caller, models.EntityActivity, func(ctx context.Context, tx dbx.DBTX, code string) error {
		a.Code = code
		return s.repomanager.Activities(tx).Insert(ctx, a)
	})
	if err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}

	s.logger.Info(ctx, "record created", "entity", models.EntityActivity, "id", a.ID, "code", a.Code)
	return a, nil
}

func (s *CRMService) GetActivity(ctx context.Context, caller Caller, id string) (*models.Activity, error) {
	db, err := s.db(ctx, caller)
	if err != nil {
		return nil, err
	}
	a, err := s.repomanager.Activities(db).FindByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, fmt.Errorf("get activity %s: %w", id, err)
	}
	return a, nil
}

// CreateNote stores n with its body encrypted.
func (s *CRMService) CreateNote(ctx context.Context, caller Caller, n *models.Note) (*models.Note, error) {
	if n == nil {
		return nil, common.ErrorInvalidEntity
	}
	s.stamp(&n.Base, caller)
	if err := audit.Notes.Seal(s.cipher, n); err != nil {
		return nil, err
	}

	err := s.issue(ctx, caller, models.EntityNote, func(ctx context.Context, tx dbx.DBTX, code string) error {
		n.Code = code
		return s.repomanager.Notes(tx).Insert(ctx, n)
	})
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.logger.Info(ctx, "record created", "entity", models.EntityNote, "id", n.ID, "code", n.Code)
	openRecord(ctx, s, audit.Notes, n)
	return n, nil
}

func (s *CRMService) GetNote(ctx context.Context, caller Caller, id string) (*models.Note, error) {
	db, err := s.db(ctx, caller)
	if err != nil {
		return nil, err
	}
	n, err := s.repomanager.Notes(db).FindByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, fmt.Errorf("get note %s: %w", id, err)
	}
	openRecord(ctx, s, audit.Notes, n)
	return n, nil
}

// CreateUser adds a member to the caller's organization. Names are stored
// encrypted.
func (s *CRMService) CreateUser(ctx context.Context, caller Caller, u *models.User) (*models.User, error) {
	if u == nil || u.Email == "" {
		return nil, common.ErrorInvalidEntity
	}
	db, err := s.db(ctx, caller)
	if err != nil {
		return nil, err
	}

	u.ID = ""
	u.OrganizationID = caller.OrganizationID
	if err := audit.Users.Seal(s.cipher, u); err != nil {
		return nil, err
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.txTimeout)
	defer cancel()
	created, err := s.repomanager.Users(db).Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info(ctx, "user created", "id", created.ID)
	openRecord(ctx, s, audit.Users, created)
	return created, nil
}

func (s *CRMService) GetUser(ctx context.Context, caller Caller, id string) (*models.User, error) {
	db, err := s.db(ctx, caller)
	if err != nil {
		return nil, err
	}
	u, err := s.repomanager.Users(db).FindByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	openRecord(ctx, s, audit.Users, u)
	return u, nil
}
