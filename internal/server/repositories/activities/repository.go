package activities

import (
	"context"

	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, a *models.Activity) error
	FindByID(ctx context.Context, orgID, id string) (*models.Activity, error)
}
