// Package services contains server-side business logic. CRMService owns the
// write path of CRM records: business identifier allocation, field
// encryption, the entity write and its audit row all commit in one
// transaction.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/dbx"
	"github.com/dmitrijs2005/crmkeeper/internal/logging"
	"github.com/dmitrijs2005/crmkeeper/internal/server/audit"
	"github.com/dmitrijs2005/crmkeeper/internal/server/auth"
	"github.com/dmitrijs2005/crmkeeper/internal/server/config"
	"github.com/dmitrijs2005/crmkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/crmkeeper/internal/server/sequence"
)

// Tenants resolves the database of an organization.
type Tenants interface {
	DB(ctx context.Context, orgID string) (*sql.DB, error)
}

// Archiver stores exported audit trails.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte) error
}

// Caller identifies who performs an operation and, optionally, the logical
// transaction it belongs to.
type Caller struct {
	UserID         string
	OrganizationID string
	Email          string
	// AuditID groups several calls into one audit description. Empty means
	// each call starts its own.
	AuditID string
}

// CallerFromClaims builds a Caller from verified token claims.
func CallerFromClaims(c *auth.Claims, auditID string) Caller {
	return Caller{
		UserID:         c.UserID,
		OrganizationID: c.OrganizationID,
		Email:          c.Email,
		AuditID:        auditID,
	}
}

func (c Caller) actor() audit.Actor {
	return audit.Actor{UserID: c.UserID, Email: c.Email, OrganizationID: c.OrganizationID}
}

// CRMService implements the CRM record operations.
type CRMService struct {
	tenants     Tenants
	repomanager repomanager.RepositoryManager
	cipher      audit.Cipher
	ids         *sequence.Generator
	audit       *audit.Engine
	archive     Archiver
	txTimeout   time.Duration
	logger      logging.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewCRMService wires the service. archive may be nil, in which case exports
// fail.
func NewCRMService(t Tenants, m repomanager.RepositoryManager, c audit.Cipher, ids *sequence.Generator,
	eng *audit.Engine, archive Archiver, cfg *config.Config, l logging.Logger, mt *metrics.Metrics) *CRMService {
	return &CRMService{
		tenants:     t,
		repomanager: m,
		cipher:      c,
		ids:         ids,
		audit:       eng,
		archive:     archive,
		txTimeout:   cfg.TxTimeout,
		logger:      l.With("module", "crm_service"),
		metrics:     mt,
		now:         time.Now,
	}
}

// WithClock returns a copy of s stamping records with now.
func (s *CRMService) WithClock(now func() time.Time) *CRMService {
	c := *s
	c.now = now
	return &c
}

func (s *CRMService) db(ctx context.Context, caller Caller) (*sql.DB, error) {
	if caller.OrganizationID == "" || caller.UserID == "" {
		return nil, common.ErrorUnauthorized
	}
	db, err := s.tenants.DB(ctx, caller.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("tenant database: %w", err)
	}
	return db, nil
}

func (s *CRMService) session(tx dbx.DBTX, caller Caller) audit.Session {
	return audit.Session{
		Store:   s.repomanager.Audits(tx),
		Labels:  &repoLabeler{rm: s.repomanager, db: tx, orgID: caller.OrganizationID, cipher: s.cipher, logger: s.logger},
		Actor:   caller.actor(),
		AuditID: caller.AuditID,
	}
}

// inTx runs fn in one transaction bounded by the configured timeout.
func (s *CRMService) inTx(ctx context.Context, caller Caller, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	db, err := s.db(ctx, caller)
	if err != nil {
		return err
	}
	ctx, cancel := dbx.WithTimeout(ctx, s.txTimeout)
	defer cancel()
	return dbx.WithTx(ctx, db, nil, fn)
}

// issue runs fn in a transaction together with the allocation of the next
// identifier of entity. When the insert violates the identifier constraint of
// entity the whole transaction is retried once with a resynchronised counter.
func (s *CRMService) issue(ctx context.Context, caller Caller, entity models.EntityType, fn func(ctx context.Context, tx dbx.DBTX, code string) error) error {
	db, err := s.db(ctx, caller)
	if err != nil {
		return err
	}
	ctx, cancel := dbx.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	for attempt := 0; ; attempt++ {
		err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			store := s.repomanager.Sequences(tx, caller.OrganizationID)
			next := s.ids.Next
			if attempt > 0 {
				next = s.ids.Resync
			}
			code, err := next(ctx, store, entity)
			if err != nil {
				return err
			}
			return fn(ctx, tx, code)
		})
		if err == nil || !dbx.UniqueViolationOn(err, entity.CodeConstraint()) {
			return err
		}

		s.metrics.IncSequenceCollision(string(entity))
		s.logger.Warn(ctx, "identifier collision", "entity", entity, "attempt", attempt+1)
		if attempt > 0 {
			return fmt.Errorf("%w: %s", common.ErrSequenceCollision, entity)
		}
	}
}
