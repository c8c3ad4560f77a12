package grpc

import (
	"context"

	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
	"github.com/dmitrijs2005/crmkeeper/internal/server/services"
)

// CRM is the part of services.CRMService the transport calls.
type CRM interface {
	CreateAccount(ctx context.Context, c services.Caller, a *models.Account) (*models.Account, error)
	UpdateAccount(ctx context.Context, c services.Caller, id string, apply func(*models.Account) error) (*models.Account, error)
	DeleteAccount(ctx context.Context, c services.Caller, id string) error
	GetAccount(ctx context.Context, c services.Caller, id string) (*models.Account, error)

	CreateContact(ctx context.Context, c services.Caller, e *models.Contact) (*models.Contact, error)
	UpdateContact(ctx context.Context, c services.Caller, id string, apply func(*models.Contact) error) (*models.Contact, error)
	DeleteContact(ctx context.Context, c services.Caller, id string) error
	GetContact(ctx context.Context, c services.Caller, id string) (*models.Contact, error)

	CreateLead(ctx context.Context, c services.Caller, l *models.Lead) (*models.Lead, error)
	UpdateLead(ctx context.Context, c services.Caller, id string, apply func(*models.Lead) error) (*models.Lead, error)
	DeleteLead(ctx context.Context, c services.Caller, id string) error
	GetLead(ctx context.Context, c services.Caller, id string) (*models.Lead, error)

	CreateOpportunity(ctx context.Context, c services.Caller, o *models.Opportunity) (*models.Opportunity, error)
	UpdateOpportunity(ctx context.Context, c services.Caller, id string, apply func(*models.Opportunity) error) (*models.Opportunity, error)
	DeleteOpportunity(ctx context.Context, c services.Caller, id string) error
	GetOpportunity(ctx context.Context, c services.Caller, id string) (*models.Opportunity, error)

	CreateActivity(ctx context.Context, c services.Caller, a *models.Activity) (*models.Activity, error)
	GetActivity(ctx context.Context, c services.Caller, id string) (*models.Activity, error)
	CreateNote(ctx context.Context, c services.Caller, n *models.Note) (*models.Note, error)
	GetNote(ctx context.Context, c services.Caller, id string) (*models.Note, error)
	CreateUser(ctx context.Context, c services.Caller, u *models.User) (*models.User, error)
	GetUser(ctx context.Context, c services.Caller, id string) (*models.User, error)

	AuditTrail(ctx context.Context, c services.Caller, kind models.EntityType, id string) ([]services.AuditEntry, error)
	ExportAuditTrail(ctx context.Context, c services.Caller, kind models.EntityType, id string) (string, error)
}

var _ CRM = (*services.CRMService)(nil)

type (
	createFn func(ctx context.Context, c services.Caller, body []byte) (any, error)
	updateFn func(ctx context.Context, c services.Caller, id string, body []byte) (any, error)
	deleteFn func(ctx context.Context, c services.Caller, id string) error
	getFn    func(ctx context.Context, c services.Caller, id string) (any, error)
)

// entityOps binds one entity type to its service calls. Unsupported
// operations are nil.
type entityOps struct {
	create createFn
	update updateFn
	remove deleteFn
	get    getFn
}

func opsFor(crm CRM, kind models.EntityType) (entityOps, bool) {
	switch kind {
	case models.EntityAccount:
		return entityOps{creator(crm.CreateAccount), updater(crm.UpdateAccount), crm.DeleteAccount, getter(crm.GetAccount)}, true
	case models.EntityContact:
		return entityOps{creator(crm.CreateContact), updater(crm.UpdateContact), crm.DeleteContact, getter(crm.GetContact)}, true
	case models.EntityLead:
		return entityOps{creator(crm.CreateLead), updater(crm.UpdateLead), crm.DeleteLead, getter(crm.GetLead)}, true
	case models.EntityOpportunity:
		return entityOps{creator(crm.CreateOpportunity), updater(crm.UpdateOpportunity), crm.DeleteOpportunity, getter(crm.GetOpportunity)}, true
	case models.EntityActivity:
		return entityOps{create: creator(crm.CreateActivity), get: getter(crm.GetActivity)}, true
	case models.EntityNote:
		return entityOps{create: creator(crm.CreateNote), get: getter(crm.GetNote)}, true
	case models.EntityUser:
		return entityOps{create: creator(crm.CreateUser), get: getter(crm.GetUser)}, true
	}
	return entityOps{}, false
}

func creator[T any](fn func(context.Context, services.Caller, *T) (*T, error)) createFn {
	return func(ctx context.Context, c services.Caller, body []byte) (any, error) {
		e := new(T)
		if err := decodeStrict(body, e); err != nil {
			return nil, err
		}
		out, err := fn(ctx, c, e)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

func updater[T any](fn func(context.Context, services.Caller, string, func(*T) error) (*T, error)) updateFn {
	return func(ctx context.Context, c services.Caller, id string, body []byte) (any, error) {
		out, err := fn(ctx, c, id, func(e *T) error { return decodeStrict(body, e) })
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

func getter[T any](fn func(context.Context, services.Caller, string) (*T, error)) getFn {
	return func(ctx context.Context, c services.Caller, id string) (any, error) {
		out, err := fn(ctx, c, id)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}
