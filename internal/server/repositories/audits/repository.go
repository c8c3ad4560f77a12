package audits

import (
	"context"

	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, rec *models.AuditRecord) error
	LatestByAuditID(ctx context.Context, chain models.AuditChain, typ models.AuditType) (*models.AuditRecord, error)
	ListByEntity(ctx context.Context, orgID string, kind models.EntityType, id string) ([]*models.AuditRecord, error)
}
