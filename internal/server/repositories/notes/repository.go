package notes

import (
	"context"

	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, n *models.Note) error
	FindByID(ctx context.Context, orgID, id string) (*models.Note, error)
}
