// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors themselves.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update would violate the
// unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateEntry is returned when a row keyed by a composite primary
// key (such as a wishlist item) is inserted twice.
var ErrDuplicateEntry = errors.New("duplicate entry")

// MySQL server error numbers the repositories translate.
const (
	mysqlDuplicateKey     = 1062
	mysqlNoReferencedRow  = 1452
	mysqlNoReferencedRow2 = 1216
)

func mysqlErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicateKey(err error) bool {
	return mysqlErrorNumber(err) == mysqlDuplicateKey
}

func isMissingReference(err error) bool {
	n := mysqlErrorNumber(err)
	return n == mysqlNoReferencedRow || n == mysqlNoReferencedRow2
}

// placeholders returns "?,?,?" with n markers for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
