package contacts

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

func (r *PostgresRepository) Insert(ctx context.Context, c *models.Contact) error {
	query :=
		`INSERT INTO contacts (id, code, organization_id, modified_by, first_name, last_name, email,
		 phone, address, title, status, birthday, owner_id, account_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 `

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Code, c.OrganizationID, c.ModifiedBy, c.FirstName, c.LastName, c.Email,
		c.Phone, c.Address, c.Title, c.Status, dbx.NullTime(c.Birthday),
		dbx.NullString(c.OwnerID), dbx.NullString(c.AccountID), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Contact) error {
	query :=
		`UPDATE contacts SET modified_by = $3, first_name = $4, last_name = $5, email = $6, phone = $7,
		 address = $8, title = $9, status = $10, birthday = $11, owner_id = $12, account_id = $13, updated_at = $14
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query,
		c.ID, c.OrganizationID, c.ModifiedBy, c.FirstName, c.LastName, c.Email, c.Phone,
		c.Address, c.Title, c.Status, dbx.NullTime(c.Birthday),
		dbx.NullString(c.OwnerID), dbx.NullString(c.AccountID), c.UpdatedAt)
	return dbx.Affected(res, err)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, orgID, id, modifiedBy string, at time.Time) error {
	query :=
		`UPDATE contacts SET deleted_at = $3, updated_at = $3, modified_by = $4
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query, id, orgID, at, modifiedBy)
	return dbx.Affected(res, err)
}

func (r *PostgresRepository) FindByID(ctx context.Context, orgID, id string) (*models.Contact, error) {
	query :=
		`SELECT id, code, organization_id, modified_by, first_name, last_name, email, phone, address,
		 title, status, birthday, owner_id, account_id, created_at, updated_at, deleted_at
		 FROM contacts
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	var (
		c                   models.Contact
		owner, account      sql.NullString
		birthday, deletedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&c.ID, &c.Code, &c.OrganizationID, &c.ModifiedBy, &c.FirstName, &c.LastName, &c.Email,
		&c.Phone, &c.Address, &c.Title, &c.Status, &birthday, &owner, &account,
		&c.CreatedAt, &c.UpdatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	c.OwnerID, c.AccountID = owner.String, account.String
	c.Birthday = dbx.TimePtr(birthday)
	c.DeletedAt = dbx.TimePtr(deletedAt)
	return &c, nil
}
