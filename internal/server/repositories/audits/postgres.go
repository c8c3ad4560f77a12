// Package audits stores audit trail rows. Rows are only ever inserted.
package audits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/dbx"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

const columns = `id, audit_id, sequence, previous_id, audit_type, description, owner_id, modified_by,
		 organization_id, account_id, contact_id, lead_id, opportunity_id, created_at`

var entityColumns = map[models.EntityType]string{
	models.EntityAccount:     "account_id",
	models.EntityContact:     "contact_id",
	models.EntityLead:        "lead_id",
	models.EntityOpportunity: "opportunity_id",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *models.AuditRecord) error {
	query :=
		`INSERT INTO audits (` + columns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 `

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.AuditID, rec.Sequence, dbx.NullString(rec.PreviousID), string(rec.AuditType),
		rec.Description, rec.OwnerID, rec.ModifiedBy, rec.OrganizationID,
		dbx.NullString(rec.AccountID), dbx.NullString(rec.ContactID), dbx.NullString(rec.LeadID),
		dbx.NullString(rec.OpportunityID), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// LatestByAuditID returns the newest row of the chain. An empty typ matches
// every audit type.
func (r *PostgresRepository) LatestByAuditID(ctx context.Context, chain models.AuditChain, typ models.AuditType) (*models.AuditRecord, error) {
	query :=
		`SELECT ` + columns + `
		 FROM audits
		 WHERE organization_id = $1 AND owner_id = $2 AND audit_id = $3
		   AND ($4::text = '' OR audit_type = $4)
		 ORDER BY sequence DESC
		 LIMIT 1
		 `

	rec, err := scan(r.db.QueryRowContext(ctx, query, chain.OrganizationID, chain.OwnerID, chain.AuditID, string(typ)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// ListByEntity returns every row referencing the given record, oldest first.
func (r *PostgresRepository) ListByEntity(ctx context.Context, orgID string, kind models.EntityType, id string) ([]*models.AuditRecord, error) {
	col, ok := entityColumns[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrorUnknownEntityType, kind)
	}

	query :=
		`SELECT ` + columns + `
		 FROM audits
		 WHERE ` + col + ` = $1 AND organization_id = $2
		 ORDER BY created_at, sequence
		 `

	rows, err := r.db.QueryContext(ctx, query, id, orgID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.AuditRecord
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.AuditRecord, error) {
	var (
		rec                               models.AuditRecord
		auditType                         string
		prev, account, contact, lead, opp sql.NullString
	)
	err := s.Scan(&rec.ID, &rec.AuditID, &rec.Sequence, &prev, &auditType, &rec.Description,
		&rec.OwnerID, &rec.ModifiedBy, &rec.OrganizationID, &account, &contact, &lead, &opp, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.AuditType = models.AuditType(auditType)
	rec.PreviousID = prev.String
	rec.AccountID, rec.ContactID, rec.LeadID, rec.OpportunityID = account.String, contact.String, lead.String, opp.String
	return &rec, nil
}
