package authv1

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "gophauth.v1.AuthService"

const (
	RegisterFullMethod = "/" + ServiceName + "/Register"
	VerifyFullMethod   = "/" + ServiceName + "/Verify"
	LoginFullMethod    = "/" + ServiceName + "/Login"
	GetMeFullMethod    = "/" + ServiceName + "/GetMe"
	GetUserFullMethod  = "/" + ServiceName + "/GetUser"
	PingFullMethod     = "/" + ServiceName + "/Ping"
	HealthFullMethod   = "/" + ServiceName + "/Health"
)

// AuthServiceServer is implemented by the gRPC transport of the server.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Verify(context.Context, *VerifyRequest) (*UserResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	GetMe(context.Context, *GetMeRequest) (*UserResponse, error)
	GetUser(context.Context, *GetUserRequest) (*UserResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Health(context.Context, *HealthRequest) (*HealthResponse, error)
}

// RegisterAuthServiceServer attaches srv to a gRPC server.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", RegisterFullMethod, AuthServiceServer.Register),
		unary("Verify", VerifyFullMethod, AuthServiceServer.Verify),
		unary("Login", LoginFullMethod, AuthServiceServer.Login),
		unary("GetMe", GetMeFullMethod, AuthServiceServer.GetMe),
		unary("GetUser", GetUserFullMethod, AuthServiceServer.GetUser),
		unary("Ping", PingFullMethod, AuthServiceServer.Ping),
		unary("Health", HealthFullMethod, AuthServiceServer.Health),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/v1/auth.json",
}

func unary[Req, Resp any](name, fullMethod string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuthServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuthServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
