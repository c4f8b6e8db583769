// Package apierr maps service errors to gRPC statuses that carry a stable,
// machine-readable key and the equivalent HTTP status.
package apierr

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Domain is the ErrorInfo domain of every status produced here.
const Domain = "gophauth"

// MetadataHTTPStatus is the ErrorInfo metadata key holding the HTTP status.
const MetadataHTTPStatus = "http_status"

// Problem describes one user-visible failure.
type Problem struct {
	Code       codes.Code
	HTTPStatus int
	Key        string
	Message    string
}

var (
	EmailAlreadyExists   = Problem{codes.AlreadyExists, http.StatusConflict, "email.already_exists", "User with this email already exists"}
	EmailAlreadyVerified = Problem{codes.AlreadyExists, http.StatusConflict, "email.already_verified", "Email already verified"}
	Conflict             = Problem{codes.AlreadyExists, http.StatusConflict, "conflict", "Conflict"}
	Forbidden            = Problem{codes.PermissionDenied, http.StatusForbidden, "forbidden", "Forbidden"}
	NotFound             = Problem{codes.NotFound, http.StatusNotFound, "not_found", "Not found"}
	ServiceUnavailable   = Problem{codes.Unavailable, http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable, retry later"}
	ServerError          = Problem{codes.Internal, http.StatusInternalServerError, "server_error", "Internal server error"}

	AuthorizationNotSet        = Problem{codes.PermissionDenied, http.StatusForbidden, "authorization.not_set", "Authorization header not recognized"}
	AuthorizationSchemeUnrecog = Problem{codes.PermissionDenied, http.StatusForbidden, "authorization.scheme_unrecognised", "Authorization scheme not recognised"}
	AuthorizationSchemeInvalid = Problem{codes.PermissionDenied, http.StatusForbidden, "authorization.scheme_invalid", "Expected Bearer authorization scheme"}
)

// Invalid reports a request field that failed validation.
func Invalid(field, message string) Problem {
	return Problem{codes.InvalidArgument, http.StatusUnprocessableEntity, "value_error." + field, message}
}

// Err returns the problem as a gRPC status error.
func (p Problem) Err() error {
	st := status.New(p.Code, p.Message)

	withDetails, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   p.Key,
		Domain:   Domain,
		Metadata: map[string]string{MetadataHTTPStatus: strconv.Itoa(p.HTTPStatus)},
	})
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}

// FromRegister maps errors of the registration workflow.
func FromRegister(err error) Problem {
	switch {
	case errors.Is(err, common.ErrEmailAlreadyVerified):
		return EmailAlreadyExists
	case errors.Is(err, common.ErrTooManyPendingSignups):
		return Conflict
	}
	return fromInfra(err)
}

// FromVerify maps errors of the verification workflow.
func FromVerify(err error) Problem {
	switch {
	case errors.Is(err, common.ErrEmailAlreadyVerified):
		return EmailAlreadyVerified
	case errors.Is(err, common.ErrTokenNotFound):
		return Forbidden
	}
	return fromInfra(err)
}

// FromRead maps errors of the account read path.
func FromRead(err error) Problem {
	if errors.Is(err, common.ErrUserNotFound) {
		return NotFound
	}
	return fromInfra(err)
}

// FromLogin maps errors of login.
func FromLogin(err error) Problem {
	if errors.Is(err, common.ErrorUnauthorized) {
		return Forbidden
	}
	return fromInfra(err)
}

func fromInfra(err error) Problem {
	if errors.Is(err, common.ErrTransactionConflictExhausted) {
		return ServiceUnavailable
	}
	return ServerError
}

// Key extracts the ErrorInfo reason from a status error, or "" if absent.
func Key(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.Domain == Domain {
			return info.Reason
		}
	}
	return ""
}
