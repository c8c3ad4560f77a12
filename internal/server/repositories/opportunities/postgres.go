package opportunities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Insert(ctx context.Context, o *models.Opportunity) error {
	query :=
		`INSERT INTO opportunities (id, code, organization_id, modified_by, name, amount, stage,
		 close_date, owner_id, account_id, contact_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 `

	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.Code, o.OrganizationID, o.ModifiedBy, o.Name, o.Amount, o.Stage,
		dbx.NullTime(o.CloseDate), dbx.NullString(o.OwnerID), dbx.NullString(o.AccountID),
		dbx.NullString(o.ContactID), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, o *models.Opportunity) error {
	query :=
		`UPDATE opportunities SET modified_by = $3, name = $4, amount = $5, stage = $6, close_date = $7,
		 owner_id = $8, account_id = $9, contact_id = $10, updated_at = $11
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query,
		o.ID, o.OrganizationID, o.ModifiedBy, o.Name, o.Amount, o.Stage, dbx.NullTime(o.CloseDate),
		dbx.NullString(o.OwnerID), dbx.NullString(o.AccountID), dbx.NullString(o.ContactID), o.UpdatedAt)
	return dbx.Affected(res, err)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, orgID, id, modifiedBy string, at time.Time) error {
	query :=
		`UPDATE opportunities SET deleted_at = $3, updated_at = $3, modified_by = $4
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query, id, orgID, at, modifiedBy)
	return dbx.Affected(res, err)
}

func (r *PostgresRepository) FindByID(ctx context.Context, orgID, id string) (*models.Opportunity, error) {
	query :=
		`SELECT id, code, organization_id, modified_by, name, amount, stage, close_date,
		 owner_id, account_id, contact_id, created_at, updated_at, deleted_at
		 FROM opportunities
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	var (
		o                       models.Opportunity
		owner, account, contact sql.NullString
		closeDate, deletedAt    sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&o.ID, &o.Code, &o.OrganizationID, &o.ModifiedBy, &o.Name, &o.Amount, &o.Stage, &closeDate,
		&owner, &account, &contact, &o.CreatedAt, &o.UpdatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	o.OwnerID, o.AccountID, o.ContactID = owner.String, account.String, contact.String
	o.CloseDate = dbx.TimePtr(closeDate)
	o.DeletedAt = dbx.TimePtr(deletedAt)
	return &o, nil
}
