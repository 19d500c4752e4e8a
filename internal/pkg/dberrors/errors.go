package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn" // Import pgconn for PgError
)

// PostgreSQL SQLSTATE codes
const (
	codeUndefinedTable = "42P01"
	codeQueryCanceled  = "57014"
)

// IsUndefinedTable reports whether err is PostgreSQL undefined_table (42P01),
// which here means the schema migrations have not been applied.
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUndefinedTable
}

// IsQueryCanceled reports whether the server canceled the statement, for
// example because of statement_timeout.
func IsQueryCanceled(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeQueryCanceled
}
