// Package repomanager vends repositories bound to a connection or an open
// transaction, and applies schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/newcomers"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/registrationtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Newcomers(db dbx.DBTX) newcomers.Repository
	RegistrationTokens(db dbx.DBTX) registrationtokens.Repository
}
