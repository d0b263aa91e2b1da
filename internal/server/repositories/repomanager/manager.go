// Package repomanager wires repository constructors to a database connection
// and runs schema migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/binarybhaskar/branchit/internal/server/repositories/profiles"
	"github.com/binarybhaskar/branchit/internal/server/repositories/usernames"
)

type RepositoryManager interface {
	Conn() *sql.DB
	Profiles() profiles.Repository
	Usernames() usernames.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}
