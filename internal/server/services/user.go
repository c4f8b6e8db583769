package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// UserService provides read access to verified accounts and login.
// Reads go straight to the pool, outside any transaction.
type UserService struct {
	db                          dbx.DBTX
	repomanager                 repomanager.RepositoryManager
	passwords                   PasswordHasher
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db dbx.DBTX, m repomanager.RepositoryManager, passwords PasswordHasher, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		passwords:                   passwords,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Login checks the password of the verified account owning email and
// returns a signed access token. Unknown email and wrong password both
// yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", err
	}

	ok, err := s.passwords.Verify(password, user.Password)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// Me returns the caller's own account.
func (s *UserService) Me(ctx context.Context, userID string) (*models.UserView, error) {
	return s.get(ctx, userID)
}

// GetUser returns any account to an admin caller. Non-admin callers get
// common.ErrUserNotFound, the same as for a missing account.
func (s *UserService) GetUser(ctx context.Context, callerRole models.Role, id string) (*models.UserView, error) {
	if !callerRole.IsAdmin() {
		return nil, common.ErrUserNotFound
	}
	return s.get(ctx, id)
}

func (s *UserService) get(ctx context.Context, id string) (*models.UserView, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrUserNotFound
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return user.View(), nil
}
