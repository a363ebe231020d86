// Package sqlxrepos implements the core repositories on PostgreSQL. Reads
// go through sqlx struct scanning; writes take the caller's executor so
// services can pass a transaction down.
package sqlxrepos

import (
	"database/sql"
	"database/sql/driver"

	"github.com/friendsofgo/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/fyptrack/core"
)

// New wraps an open connection for the repositories in this package.
func New(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "postgres")
}

// getExec picks the service-provided executor (a transaction) over the
// repository's own connection.
func getExec(db *sqlx.DB, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return db
}

// intArray binds a []int as a postgres array value.
func intArray(ids []int) driver.Valuer {
	return pq.Array(ids)
}

// trapNoRowsErr maps sql.ErrNoRows to the domain sentinel.
func trapNoRowsErr(err, sentinel error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return sentinel
	}
	return errors.Wrap(err, msg)
}
