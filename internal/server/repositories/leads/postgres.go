package leads

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

func (r *PostgresRepository) Insert(ctx context.Context, l *models.Lead) error {
	query :=
		`INSERT INTO leads (id, code, organization_id, modified_by, first_name, last_name, email,
		 phone, company, source, status, owner_id, contact_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 `

	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.Code, l.OrganizationID, l.ModifiedBy, l.FirstName, l.LastName, l.Email,
		l.Phone, l.Company, l.Source, l.Status,
		dbx.NullString(l.OwnerID), dbx.NullString(l.ContactID), l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, l *models.Lead) error {
	query :=
		`UPDATE leads SET modified_by = $3, first_name = $4, last_name = $5, email = $6, phone = $7,
		 company = $8, source = $9, status = $10, owner_id = $11, contact_id = $12, updated_at = $13
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query,
		l.ID, l.OrganizationID, l.ModifiedBy, l.FirstName, l.LastName, l.Email, l.Phone,
		l.Company, l.Source, l.Status,
		dbx.NullString(l.OwnerID), dbx.NullString(l.ContactID), l.UpdatedAt)
	return dbx.Affected(res, err)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, orgID, id, modifiedBy string, at time.Time) error {
	query :=
		`UPDATE leads SET deleted_at = $3, updated_at = $3, modified_by = $4
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query, id, orgID, at, modifiedBy)
	return dbx.Affected(res, err)
}

func (r *PostgresRepository) FindByID(ctx context.Context, orgID, id string) (*models.Lead, error) {
	query :=
		`SELECT id, code, organization_id, modified_by, first_name, last_name, email, phone,
		 company, source, status, owner_id, contact_id, created_at, updated_at, deleted_at
		 FROM leads
		 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		 `

	var (
		l              models.Lead
		owner, contact sql.NullString
		deletedAt      sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&l.ID, &l.Code, &l.OrganizationID, &l.ModifiedBy, &l.FirstName, &l.LastName, &l.Email, &l.Phone,
		&l.Company, &l.Source, &l.Status, &owner, &contact, &l.CreatedAt, &l.UpdatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	l.OwnerID, l.ContactID = owner.String, contact.String
	l.DeletedAt = dbx.TimePtr(deletedAt)
	return &l, nil
}
