package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/api/authv1"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc/metadata"
)

func (a *App) register(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: register <name> <email>", ErrUsage)
	}

	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	resp, err := a.client.Register(ctx, &authv1.RegisterRequest{Name: args[0], Email: args[1], Password: password})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s <%s>, id %s\n", resp.Newcomer.Name, resp.Newcomer.Email, resp.Newcomer.UserID)
	fmt.Fprintln(a.out, "Check your mailbox for the confirmation link")
	return nil
}

func (a *App) verify(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: verify <token>", ErrUsage)
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	resp, err := a.client.Verify(ctx, &authv1.VerifyRequest{Token: args[0]})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Email verified")
	printUser(a.out, resp.User)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: login <email>", ErrUsage)
	}

	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	callCtx, cancel := a.call(ctx)
	defer cancel()

	resp, err := a.client.Login(callCtx, &authv1.LoginRequest{Email: args[0], Password: password})
	if err != nil {
		return err
	}

	if err := a.sessions.Save(ctx, session.Session{Email: args[0], AccessToken: resp.AccessToken, SavedAt: a.now()}); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Logged in as", args[0])
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) me(ctx context.Context) error {
	ctx, cancel, err := a.authorized(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	resp, err := a.client.GetMe(ctx, &authv1.GetMeRequest{})
	if err != nil {
		return err
	}

	printUser(a.out, resp.User)
	return nil
}

func (a *App) user(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: user <id>", ErrUsage)
	}

	ctx, cancel, err := a.authorized(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	resp, err := a.client.GetUser(ctx, &authv1.GetUserRequest{UserID: args[0]})
	if err != nil {
		return err
	}

	printUser(a.out, resp.User)
	return nil
}

func (a *App) ping(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	resp, err := a.client.Ping(ctx, &authv1.PingRequest{})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return nil
}

func (a *App) health(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	resp, err := a.client.Health(ctx, &authv1.HealthRequest{})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Status)
	return nil
}

// authorized returns a call context carrying the saved access token.
func (a *App) authorized(ctx context.Context) (context.Context, context.CancelFunc, error) {
	sess, err := a.sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, nil, fmt.Errorf("%w, run login first", err)
		}
		return nil, nil, err
	}

	ctx = metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, common.BearerScheme+" "+sess.AccessToken)
	ctx, cancel := a.call(ctx)
	return ctx, cancel, nil
}
