package registrationtokens

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists registration token hashes. Plain tokens never reach it.
type Repository interface {
	Create(ctx context.Context, token *models.RegistrationToken) error
}
