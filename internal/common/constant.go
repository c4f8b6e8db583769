// Package common contains shared constants and sentinel errors used across
// gophauth components.
package common

// AuthorizationHeaderName is the gRPC metadata key carrying the bearer
// access token on authenticated calls.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// ServiceName identifies the service in logs and traces.
const ServiceName = "gophauth"
