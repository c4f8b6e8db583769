package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api/authv1"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

func printUser(w io.Writer, u authv1.User) {
	fmt.Fprintf(w, "id:          %s\n", u.UserID)
	fmt.Fprintf(w, "name:        %s\n", u.Name)
	fmt.Fprintf(w, "email:       %s\n", u.Email)
	fmt.Fprintf(w, "role:        %s\n", u.Role)
	fmt.Fprintf(w, "created at:  %s\n", u.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "verified at: %s\n", u.VerifiedAt.Format(time.RFC3339))
}

// describe turns a gRPC status into "message (key)" using the error reason
// sent by the server.
func describe(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return fmt.Errorf("%s (%s)", st.Message(), info.Reason)
		}
	}
	return fmt.Errorf("%s: %s", st.Code(), st.Message())
}
