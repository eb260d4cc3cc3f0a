package repomanager

import (
	"context"
	"database/sql"

	"github.com/Vicktor007/store-lit/internal/dbx"
	"github.com/Vicktor007/store-lit/internal/server/repositories/accounts"
	"github.com/Vicktor007/store-lit/internal/server/repositories/files"
	"github.com/Vicktor007/store-lit/internal/server/repositories/otpcodes"
	"github.com/Vicktor007/store-lit/internal/server/repositories/sessions"
	"github.com/Vicktor007/store-lit/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	OneTimeCodes(db dbx.DBTX) otpcodes.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
