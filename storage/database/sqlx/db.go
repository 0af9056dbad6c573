package sqlxrepos

import (
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/mgawo/core"
)

// getExec prefers a service-provided executor (eg. an open transaction)
// over the repository's own handle.
func getExec(db *sqlx.DB, svcExec []core.DBExecutor) sqlx.ExtContext {
	if len(svcExec) > 0 {
		if exe, ok := svcExec[0].(sqlx.ExtContext); ok {
			return exe
		}
	}
	return db
}
