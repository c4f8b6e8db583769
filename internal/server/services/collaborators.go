package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/google/uuid"
)

// TxRunner runs a unit of work inside a transaction. dbx.Executor is the
// production implementation.
type TxRunner interface {
	Run(ctx context.Context, fn dbx.TxFunc) error
}

// PasswordHasher turns a plaintext password into a stored credential and
// checks a candidate against it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, credential string) (bool, error)
}

// TokenHasher issues registration tokens. Only the hashed form is stored;
// Hash must return the same value Generate returned for the token.
type TokenHasher interface {
	Generate() (plain string, hashed string, err error)
	Hash(plain string) string
}

// Mailer is notified once per committed registration.
type Mailer interface {
	SendRegistrationLetter(ctx context.Context, name, email, token string) error
}

// IDGenerator produces identifiers for new accounts.
type IDGenerator interface {
	NewID() string
}

// Clock supplies the timestamps written to the database.
type Clock interface {
	Now() time.Time
}

// Collaborators groups the pluggable dependencies of the services.
type Collaborators struct {
	Passwords PasswordHasher
	Tokens    TokenHasher
	Mailer    Mailer
	IDs       IDGenerator
	Clock     Clock
}

// DefaultCollaborators wires argon2id passwords, SHA-256 hashed tokens,
// UUIDv4 identifiers and the UTC system clock around mailer.
func DefaultCollaborators(mailer Mailer) Collaborators {
	return Collaborators{
		Passwords: cryptox.NewArgon2Hasher(cryptox.DefaultArgon2Params),
		Tokens:    cryptox.NewTokens(),
		Mailer:    mailer,
		IDs:       UUIDGenerator{},
		Clock:     SystemClock{},
	}
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SystemClock returns the current UTC time at the precision Postgres keeps.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
