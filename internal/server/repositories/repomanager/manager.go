package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/storykeeper/internal/dbx"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/stories"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can pick
// either the pool or a transaction handle per call.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Stories(db dbx.DBTX) stories.Repository
}
