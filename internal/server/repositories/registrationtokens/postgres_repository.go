package registrationtokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.RegistrationToken) error {

	query :=
		`INSERT INTO registration_tokens (token, user_id, created_at, expired_at)
         VALUES ($1, $2, $3, $4)
		 `

	_, err := r.db.ExecContext(ctx, query, token.TokenHash, token.UserID, token.CreatedAt, token.ExpiredAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
