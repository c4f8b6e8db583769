package newcomers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CountByEmail(ctx context.Context, email string) (int, error) {
	query :=
		`SELECT COUNT(*) FROM newcomers
		 WHERE email = $1
		 `

	var n int
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Newcomer) (*models.Newcomer, error) {

	query :=
		`INSERT INTO newcomers (user_id, name, email, password, created_at)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING user_id
		 `

	err := r.db.QueryRowContext(ctx, query,
		n.ID, n.Name, n.Email, n.Password, n.CreatedAt).Scan(&n.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, tokenHash string, now time.Time) (*models.Newcomer, error) {
	query :=
		`SELECT n.user_id, n.name, n.email, n.password, n.created_at
		 FROM newcomers n
		 JOIN registration_tokens t ON t.user_id = n.user_id
		 WHERE t.token = $1 AND t.expired_at > $2
		 `

	n := &models.Newcomer{}
	err := r.db.QueryRowContext(ctx, query, tokenHash, now).Scan(&n.ID, &n.Name, &n.Email, &n.Password, &n.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	query :=
		`DELETE FROM newcomers n
		 WHERE NOT EXISTS (
		     SELECT 1 FROM registration_tokens t
		     WHERE t.user_id = n.user_id AND t.expired_at > $1
		 )
		 `

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return deleted, nil
}
