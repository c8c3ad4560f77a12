package users

import (
	"context"

	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, orgID, id string) (*models.User, error)
}
