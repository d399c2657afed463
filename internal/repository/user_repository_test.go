package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("ana@example.com", "hash", "CLIENT").
		WillReturnResult(sqlmock.NewResult(4, 1))
	id, err := repo.Create(ctx, "  Ana@Example.COM ", "hash", "CLIENT")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), id)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	_, err = repo.Create(ctx, "ana@example.com", "hash", "CLIENT")
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.ErrorIs(t, err, ErrConflict)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=?").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
