package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/api/authv1"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/apierr"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

func (s *GRPCServer) Register(ctx context.Context, req *authv1.RegisterRequest) (*authv1.RegisterResponse, error) {
	in := authv1.RegisterRequest{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}
	if err := s.validateRequest(&in); err != nil {
		return nil, err
	}

	newcomer, err := s.registration.Register(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		return nil, s.fail(ctx, "register", err, apierr.FromRegister(err))
	}

	return &authv1.RegisterResponse{Newcomer: toNewcomer(newcomer)}, nil
}

func (s *GRPCServer) Verify(ctx context.Context, req *authv1.VerifyRequest) (*authv1.UserResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.registration.Verify(ctx, req.Token)
	if err != nil {
		return nil, s.fail(ctx, "verify", err, apierr.FromVerify(err))
	}

	return &authv1.UserResponse{User: toUser(user)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *authv1.LoginRequest) (*authv1.LoginResponse, error) {
	in := authv1.LoginRequest{Email: strings.TrimSpace(req.Email), Password: req.Password}
	if err := s.validateRequest(&in); err != nil {
		return nil, err
	}

	token, err := s.accounts.Login(ctx, in.Email, in.Password)
	if err != nil {
		return nil, s.fail(ctx, "login", err, apierr.FromLogin(err))
	}

	return &authv1.LoginResponse{AccessToken: token, TokenType: common.BearerScheme}, nil
}

func (s *GRPCServer) GetMe(ctx context.Context, _ *authv1.GetMeRequest) (*authv1.UserResponse, error) {
	me, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	return &authv1.UserResponse{User: toUser(me)}, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *authv1.GetUserRequest) (*authv1.UserResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	me, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.accounts.GetUser(ctx, me.Role, req.UserID)
	if err != nil {
		return nil, s.fail(ctx, "get user", err, apierr.FromRead(err))
	}

	return &authv1.UserResponse{User: toUser(user)}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *authv1.PingRequest) (*authv1.PingResponse, error) {
	return &authv1.PingResponse{Message: "pong"}, nil
}

func (s *GRPCServer) Health(ctx context.Context, _ *authv1.HealthRequest) (*authv1.HealthResponse, error) {
	if err := s.db.Ping(ctx); err != nil {
		return nil, s.fail(ctx, "health", err, apierr.ServiceUnavailable)
	}
	return &authv1.HealthResponse{Status: "ok"}, nil
}

// caller loads the account the access token was issued to. A token whose
// account no longer exists is refused.
func (s *GRPCServer) caller(ctx context.Context) (*models.UserView, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil, apierr.Forbidden.Err()
	}

	me, err := s.accounts.Me(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, apierr.Forbidden.Err()
		}
		return nil, s.fail(ctx, "load caller", err, apierr.FromRead(err))
	}
	return me, nil
}

func (s *GRPCServer) fail(ctx context.Context, op string, err error, p apierr.Problem) error {
	if p.HTTPStatus >= 500 {
		s.logger.Error(ctx, op+" failed", "error", err)
	} else {
		s.logger.Debug(ctx, op+" rejected", "error", err, "key", p.Key)
	}
	return p.Err()
}

func toNewcomer(n *models.NewcomerView) authv1.Newcomer {
	return authv1.Newcomer{
		UserID:    n.ID,
		Name:      n.Name,
		Email:     n.Email,
		CreatedAt: n.CreatedAt,
	}
}

func toUser(u *models.UserView) authv1.User {
	return authv1.User{
		UserID:     u.ID,
		Name:       u.Name,
		Email:      u.Email,
		CreatedAt:  u.CreatedAt,
		VerifiedAt: u.VerifiedAt,
		Role:       string(u.Role),
	}
}
