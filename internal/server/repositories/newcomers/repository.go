package newcomers

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository reads and writes pending signups.
type Repository interface {
	CountByEmail(ctx context.Context, email string) (int, error)
	Create(ctx context.Context, n *models.Newcomer) (*models.Newcomer, error)
	// GetByToken returns the newcomer owning a registration token with the
	// given hash that expires after now, or common.ErrorNotFound.
	GetByToken(ctx context.Context, tokenHash string, now time.Time) (*models.Newcomer, error)
	// DeleteStale removes newcomers without an unexpired token.
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}
