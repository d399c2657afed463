package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x@y.cl' for key 'users.email'"}
	err := translate(dup)
	assert.Same(t, ErrConflict, err)
	assert.NotContains(t, err.Error(), "Duplicate entry")

	fk := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
	assert.Same(t, ErrNotFound, translate(fk))
	assert.Same(t, ErrNotFound, translate(sql.ErrNoRows))

	other := errors.New("connection reset")
	assert.Same(t, other, translate(other))
	assert.NoError(t, translate(nil))
}
