// Package sequences persists the per-organization identifier counters used
// by the sequence generator.
package sequences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/dbx"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

// PostgresRepository is bound to one organization and implements
// sequence.Store.
type PostgresRepository struct {
	db    dbx.DBTX
	orgID string
}

func NewPostgresRepository(db dbx.DBTX, orgID string) *PostgresRepository {
	return &PostgresRepository{db: db, orgID: orgID}
}

func (r *PostgresRepository) Increment(ctx context.Context, entity models.EntityType, year int) (int64, error) {
	query :=
		`UPDATE sequence_counters SET value = value + 1
		 WHERE organization_id = $1 AND entity_type = $2 AND year = $3
		 RETURNING value
		 `

	var v int64
	err := r.db.QueryRowContext(ctx, query, r.orgID, string(entity), year).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

// Seed creates the counter at floor+1, or raises an existing one to
// max(value, floor)+1. Concurrent seeders serialize on the primary key.
func (r *PostgresRepository) Seed(ctx context.Context, entity models.EntityType, year int, floor int64) (int64, error) {
	query :=
		`INSERT INTO sequence_counters (organization_id, entity_type, year, value)
		 VALUES ($1, $2, $3, $4 + 1)
		 ON CONFLICT (organization_id, entity_type, year)
		 DO UPDATE SET value = GREATEST(sequence_counters.value, EXCLUDED.value - 1) + 1
		 RETURNING value
		 `

	var v int64
	err := r.db.QueryRowContext(ctx, query, r.orgID, string(entity), year, floor).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

// LatestCode reads the most recently created identifier, soft-deleted rows
// included.
func (r *PostgresRepository) LatestCode(ctx context.Context, entity models.EntityType) (string, error) {
	table := entity.Table()
	if table == "" || !entity.Sequenced() {
		return "", fmt.Errorf("%w: %q", common.ErrorUnknownEntityType, entity)
	}

	query :=
		`SELECT code FROM ` + table + `
		 WHERE organization_id = $1
		 ORDER BY created_at DESC, code DESC
		 LIMIT 1
		 `

	var code string
	err := r.db.QueryRowContext(ctx, query, r.orgID).Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return code, nil
}
