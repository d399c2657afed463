// Package repository holds the MySQL persistence layer.  Repositories
// translate driver errors into the sentinels below so that the service
// layer never has to inspect MySQL error numbers or sql.ErrNoRows.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup, update or delete matches no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a unique key, such as a
// second payment for the same reservation or a reused email address.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is the conflict reported for users and clients whose
// email is already registered.
var ErrEmailExists = fmt.Errorf("email already exists: %w", ErrConflict)

const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrNoReferencedRow = 1452
)

// IsDuplicateKey reports whether err is a MySQL unique key violation.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// translate maps driver errors onto repository sentinels.  Driver text is
// dropped so it never reaches a response body.  Anything it does not
// recognise is returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrDuplicateEntry:
			return ErrConflict
		case mysqlErrNoReferencedRow:
			return ErrNotFound
		}
	}
	return err
}

// affected turns a zero-row result into ErrNotFound.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
