package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository reads and writes verified accounts. Lookups that match no row
// return common.ErrorNotFound.
type Repository interface {
	CountByEmail(ctx context.Context, email string) (int, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
