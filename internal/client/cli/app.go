package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api/authv1"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// AuthClient is the part of authv1.AuthServiceClient used by the commands.
type AuthClient interface {
	Register(ctx context.Context, in *authv1.RegisterRequest, opts ...grpc.CallOption) (*authv1.RegisterResponse, error)
	Verify(ctx context.Context, in *authv1.VerifyRequest, opts ...grpc.CallOption) (*authv1.UserResponse, error)
	Login(ctx context.Context, in *authv1.LoginRequest, opts ...grpc.CallOption) (*authv1.LoginResponse, error)
	GetMe(ctx context.Context, in *authv1.GetMeRequest, opts ...grpc.CallOption) (*authv1.UserResponse, error)
	GetUser(ctx context.Context, in *authv1.GetUserRequest, opts ...grpc.CallOption) (*authv1.UserResponse, error)
	Ping(ctx context.Context, in *authv1.PingRequest, opts ...grpc.CallOption) (*authv1.PingResponse, error)
	Health(ctx context.Context, in *authv1.HealthRequest, opts ...grpc.CallOption) (*authv1.HealthResponse, error)
}

// SessionStore keeps the access token between runs.
type SessionStore interface {
	Save(ctx context.Context, sess session.Session) error
	Load(ctx context.Context) (*session.Session, error)
	Clear(ctx context.Context) error
}

var ErrUsage = errors.New("usage")

type App struct {
	client   AuthClient
	sessions SessionStore
	reader   *bufio.Reader
	out      io.Writer
	timeout  time.Duration
	now      func() time.Time
}

func newApp(client AuthClient, sessions SessionStore, in io.Reader, out io.Writer, timeout time.Duration) *App {
	return &App{
		client:   client,
		sessions: sessions,
		reader:   bufio.NewReader(in),
		out:      out,
		timeout:  timeout,
		now:      time.Now,
	}
}

// NewApp dials the server and opens the session file. The returned close
// function releases both.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, func() error, error) {
	conn, err := grpc.NewClient(c.ServerEndpointAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", c.ServerEndpointAddr, err)
	}

	store, err := session.Open(ctx, c.SessionPath)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	closeFn := func() error {
		return errors.Join(store.Close(), conn.Close())
	}

	return newApp(authv1.NewAuthServiceClient(conn), store, in, out, c.RequestTimeout), closeFn, nil
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "register":
		err = a.register(ctx, rest)
	case "verify":
		err = a.verify(ctx, rest)
	case "login":
		err = a.login(ctx, rest)
	case "logout":
		err = a.logout(ctx)
	case "me":
		err = a.me(ctx)
	case "user":
		err = a.user(ctx, rest)
	case "ping":
		err = a.ping(ctx)
	case "health":
		err = a.health(ctx)
	case "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
	return describe(err)
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Available commands: register <name> <email>, verify <token>, login <email>, logout, me, user <id>, ping, health")
}

func (a *App) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.timeout)
}
