package leads

import (
	"context"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, l *models.Lead) error
	Update(ctx context.Context, l *models.Lead) error
	SoftDelete(ctx context.Context, orgID, id, modifiedBy string, at time.Time) error
	FindByID(ctx context.Context, orgID, id string) (*models.Lead, error)
}
