package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, a *models.Account) error
	Update(ctx context.Context, a *models.Account) error
	SoftDelete(ctx context.Context, orgID, id, modifiedBy string, at time.Time) error
	FindByID(ctx context.Context, orgID, id string) (*models.Account, error)
}
