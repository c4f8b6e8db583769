// Package services contains the server-side business logic: signup
// registration and verification, account reads and login, and the stale
// signup sweep.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// RegistrationService registers newcomers and promotes them to users once
// they present the emailed token. Every operation runs in one serializable
// transaction through TxRunner.
type RegistrationService struct {
	tx          TxRunner
	repomanager repomanager.RepositoryManager
	deps        Collaborators
	logger      logging.Logger

	maxNewcomersWithSameEmail int
	registrationTokenLifetime time.Duration
}

func NewRegistrationService(tx TxRunner, m repomanager.RepositoryManager, deps Collaborators, cfg *config.Config, logger logging.Logger) *RegistrationService {
	return &RegistrationService{
		tx:                        tx,
		repomanager:               m,
		deps:                      deps,
		logger:                    logger,
		maxNewcomersWithSameEmail: cfg.MaxNewcomersWithSameEmail,
		registrationTokenLifetime: cfg.RegistrationTokenLifetime,
	}
}

// Register stores a newcomer together with a registration token and, after
// commit, mails the plaintext token. Name and email are trimmed first.
//
// Fails with common.ErrEmailAlreadyVerified when a user owns the email and
// with common.ErrTooManyPendingSignups when the pending cap is reached.
func (s *RegistrationService) Register(ctx context.Context, name, email, password string) (*models.NewcomerView, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	credential, err := s.deps.Passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var (
		view  *models.NewcomerView
		token string
	)

	err = s.tx.Run(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		verified, err := s.repomanager.Users(tx).CountByEmail(ctx, email)
		if err != nil {
			return err
		}
		if verified > 0 {
			return common.ErrEmailAlreadyVerified
		}

		newcomersRepo := s.repomanager.Newcomers(tx)

		pending, err := newcomersRepo.CountByEmail(ctx, email)
		if err != nil {
			return err
		}
		if pending >= s.maxNewcomersWithSameEmail {
			return common.ErrTooManyPendingSignups
		}

		now := s.deps.Clock.Now()

		n, err := newcomersRepo.Create(ctx, &models.Newcomer{
			ID:        s.deps.IDs.NewID(),
			Name:      name,
			Email:     email,
			Password:  credential,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}

		plain, hashed, err := s.deps.Tokens.Generate()
		if err != nil {
			return fmt.Errorf("generate registration token: %w", err)
		}

		err = s.repomanager.RegistrationTokens(tx).Create(ctx, &models.RegistrationToken{
			TokenHash: hashed,
			UserID:    n.ID,
			CreatedAt: now,
			ExpiredAt: now.Add(s.registrationTokenLifetime),
		})
		if err != nil {
			return err
		}

		view, token = n.View(), plain
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "newcomer registered", "user_id", view.ID)

	if err := s.deps.Mailer.SendRegistrationLetter(ctx, view.Name, view.Email, token); err != nil {
		s.logger.Error(ctx, "registration letter failed", "user_id", view.ID, "error", err)
	}

	return view, nil
}

// Verify promotes the newcomer owning an unexpired token into a user.
//
// Fails with common.ErrTokenNotFound for unknown or expired tokens and with
// common.ErrEmailAlreadyVerified when the email has been claimed meanwhile.
func (s *RegistrationService) Verify(ctx context.Context, token string) (*models.UserView, error) {
	hashed := s.deps.Tokens.Hash(token)

	var view *models.UserView

	err := s.tx.Run(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		now := s.deps.Clock.Now()

		n, err := s.repomanager.Newcomers(tx).GetByToken(ctx, hashed, now)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrTokenNotFound
			}
			return err
		}

		usersRepo := s.repomanager.Users(tx)

		verified, err := usersRepo.CountByEmail(ctx, n.Email)
		if err != nil {
			return err
		}
		if verified > 0 {
			return common.ErrEmailAlreadyVerified
		}

		u, err := usersRepo.Create(ctx, n.Promote(now))
		if err != nil {
			return err
		}

		view = u.View()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "newcomer verified", "user_id", view.ID)
	return view, nil
}
