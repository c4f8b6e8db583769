package grpc

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api/authv1"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/apierr"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const claimsKey ctxKey = "claims"

var protectedMethods = map[string]bool{
	authv1.GetMeFullMethod:   true,
	authv1.GetUserFullMethod: true,
}

// ClaimsFromContext returns the access token claims put by the
// authorization interceptor.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	token, err := bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		s.logger.Debug(ctx, "access token rejected", "error", err)
		return nil, apierr.Forbidden.Err()
	}

	return handler(context.WithValue(ctx, claimsKey, claims), req)
}

func bearerToken(ctx context.Context) (string, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			header = values[0]
		}
	}
	if header == "" {
		return "", apierr.AuthorizationNotSet.Err()
	}

	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", apierr.AuthorizationSchemeUnrecog.Err()
	}
	if parts[0] != common.BearerScheme {
		return "", apierr.AuthorizationSchemeInvalid.Err()
	}
	return parts[1], nil
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	args := []any{"method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start)}
	if key := apierr.Key(err); key != "" {
		args = append(args, "key", key)
	}
	s.logger.Info(ctx, "rpc", args...)

	return resp, err
}

func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "panic in handler", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			resp, err = nil, apierr.ServerError.Err()
		}
	}()
	return handler(ctx, req)
}
