package activities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/dbx"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, a *models.Activity) error {
	query :=
		`INSERT INTO activities (id, code, organization_id, modified_by, subject, type, due_at,
		 owner_id, account_id, contact_id, lead_id, opportunity_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 `

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Code, a.OrganizationID, a.ModifiedBy, a.Subject, a.Type, dbx.NullTime(a.DueAt),
		dbx.NullString(a.OwnerID), dbx.NullString(a.AccountID), dbx.NullString(a.ContactID),
		dbx.NullString(a.LeadID), dbx.NullString(a.OpportunityID), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, orgID, id string) (*models.Activity, error) {
	query :=
		`SELECT id, code, organization_id, modified_by, subject, type, due_at, owner_id, account_id,
		 contact_id, lead_id, opportunity_id, created_at, updated_at
		 FROM activities
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	var (
		a                                  models.Activity
		owner, account, contact, lead, opp sql.NullString
		dueAt                              sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&a.ID, &a.Code, &a.OrganizationID, &a.ModifiedBy, &a.Subject, &a.Type, &dueAt,
		&owner, &account, &contact, &lead, &opp, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.OwnerID, a.AccountID, a.ContactID = owner.String, account.String, contact.String
	a.LeadID, a.OpportunityID = lead.String, opp.String
	a.DueAt = dbx.TimePtr(dueAt)
	return &a, nil
}
