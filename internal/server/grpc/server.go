package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/api/authv1"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Registrar runs the signup and email verification workflows.
type Registrar interface {
	Register(ctx context.Context, name, email, password string) (*models.NewcomerView, error)
	Verify(ctx context.Context, token string) (*models.UserView, error)
}

// Accounts serves login and reads of verified accounts.
type Accounts interface {
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, userID string) (*models.UserView, error)
	GetUser(ctx context.Context, callerRole models.Role, id string) (*models.UserView, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type GRPCServer struct {
	address      string
	registration Registrar
	accounts     Accounts
	db           Pinger
	logger       logging.Logger
	jwtSecret    []byte
	validate     *validator.Validate
	health       *health.Server
}

func NewGRPCServer(a string, l logging.Logger, reg Registrar, acc Accounts, db Pinger, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:      a,
		logger:       l.With("module", "grpc_server"),
		registration: reg,
		accounts:     acc,
		db:           db,
		jwtSecret:    []byte(secretKey),
		validate:     newValidator(),
		health:       health.NewServer(),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.recoveryInterceptor, s.loggingInterceptor, s.accessTokenInterceptor),
	)

	authv1.RegisterAuthServiceServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(authv1.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	return srv.Serve(listen)
}
