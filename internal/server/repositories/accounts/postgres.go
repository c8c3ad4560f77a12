package accounts

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

func (r *PostgresRepository) Insert(ctx context.Context, a *models.Account) error {
	query :=
		`INSERT INTO accounts (id, code, organization_id, modified_by, name, industry, website,
		 phone, email, address, owner_id, parent_account_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 `

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Code, a.OrganizationID, a.ModifiedBy, a.Name, a.Industry, a.Website,
		a.Phone, a.Email, a.Address, dbx.NullString(a.OwnerID), dbx.NullString(a.ParentAccountID),
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Account) error {
	query :=
		`UPDATE accounts SET modified_by = $3, name = $4, industry = $5, website = $6,
		 phone = $7, email = $8, address = $9, owner_id = $10, parent_account_id = $11, updated_at = $12
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query,
		a.ID, a.OrganizationID, a.ModifiedBy, a.Name, a.Industry, a.Website,
		a.Phone, a.Email, a.Address, dbx.NullString(a.OwnerID), dbx.NullString(a.ParentAccountID),
		a.UpdatedAt)
	return dbx.Affected(res, err)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, orgID, id, modifiedBy string, at time.Time) error {
	query :=
		`UPDATE accounts SET deleted_at = $3, updated_at = $3, modified_by = $4
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query, id, orgID, at, modifiedBy)
	return dbx.Affected(res, err)
}

func (r *PostgresRepository) FindByID(ctx context.Context, orgID, id string) (*models.Account, error) {
	query :=
		`SELECT id, code, organization_id, modified_by, name, industry, website, phone, email, address,
		 owner_id, parent_account_id, created_at, updated_at, deleted_at
		 FROM accounts
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	var (
		a             models.Account
		owner, parent sql.NullString
		deletedAt     sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&a.ID, &a.Code, &a.OrganizationID, &a.ModifiedBy, &a.Name, &a.Industry, &a.Website,
		&a.Phone, &a.Email, &a.Address, &owner, &parent, &a.CreatedAt, &a.UpdatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.OwnerID, a.ParentAccountID = owner.String, parent.String
	a.DeletedAt = dbx.TimePtr(deletedAt)
	return &a, nil
}
