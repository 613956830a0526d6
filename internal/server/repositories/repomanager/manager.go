package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/worklogger/internal/dbx"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/entries"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/exports"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Entries(db dbx.DBTX) entries.Repository
	Exports(db dbx.DBTX) exports.Repository
}
