package notes

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

func (r *PostgresRepository) Insert(ctx context.Context, n *models.Note) error {
	query :=
		`INSERT INTO notes (id, code, organization_id, modified_by, body, owner_id, account_id,
		 contact_id, lead_id, opportunity_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 `

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.Code, n.OrganizationID, n.ModifiedBy, n.Body, dbx.NullString(n.OwnerID),
		dbx.NullString(n.AccountID), dbx.NullString(n.ContactID), dbx.NullString(n.LeadID),
		dbx.NullString(n.OpportunityID), n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, orgID, id string) (*models.Note, error) {
	query :=
		`SELECT id, code, organization_id, modified_by, body, owner_id, account_id, contact_id,
		 lead_id, opportunity_id, created_at, updated_at
		 FROM notes
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	var (
		n                                  models.Note
		owner, account, contact, lead, opp sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&n.ID, &n.Code, &n.OrganizationID, &n.ModifiedBy, &n.Body, &owner, &account, &contact,
		&lead, &opp, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	n.OwnerID, n.AccountID, n.ContactID = owner.String, account.String, contact.String
	n.LeadID, n.OpportunityID = lead.String, opp.String
	return &n, nil
}
