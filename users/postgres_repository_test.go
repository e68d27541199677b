package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

var columns = []string{"uid", "username", "email", "first_name", "last_name", "role", "is_verified", "password_hash", "created_at", "updated_at"}

func sampleUser() *User {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &User{
		UID:          "7d3f0c2e-6a4b-4a41-9c1b-1a2b3c4d5e6f",
		Username:     "alice",
		Email:        "alice@example.com",
		FirstName:    "Alice",
		LastName:     "Doe",
		Role:         RoleUser,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
}

func rowFor(u *User) *sqlmock.Rows {
	return sqlmock.NewRows(columns).AddRow(u.UID, u.Username, u.Email, u.FirstName, u.LastName,
		u.Role, u.IsVerified, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
}

func TestPostgresCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := sampleUser()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users\s*\(uid,.*\)\s*VALUES\s*\(\$1,.*\$10\)$`).
		WithArgs(u.UID, u.Username, u.Email, u.FirstName, u.LastName, u.Role, false, u.PasswordHash, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), sampleUser())
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestPostgresCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), sampleUser())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
}

func TestPostgresGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := sampleUser()

	mock.ExpectQuery(`(?s)^SELECT\s+uid,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`).
		WithArgs(u.Email).
		WillReturnRows(rowFor(u))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestPostgresGetByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+email\s*=\s*\$1`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresGetByUID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := sampleUser()

	mock.ExpectQuery(`WHERE\s+uid\s*=\s*\$1`).
		WithArgs(u.UID).
		WillReturnRows(rowFor(u))

	got, err := repo.GetByUID(context.Background(), u.UID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
}

func TestPostgresUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := sampleUser()
	u.IsVerified = true

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET.*WHERE\s+uid\s*=\s*\$1$`).
		WithArgs(u.UID, u.Username, u.FirstName, u.LastName, u.Role, true, u.PasswordHash, u.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_NoRows(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE\s+users`).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Update(context.Background(), sampleUser()), ErrNotFound)
}

func TestPostgresList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	a := sampleUser()
	b := sampleUser()
	b.UID = "0b8e4c3a-2f1d-4e5c-8a7b-6c5d4e3f2a1b"
	b.Email = "bob@example.com"
	b.Role = RoleAdmin

	rows := rowFor(a).AddRow(b.UID, b.Username, b.Email, b.FirstName, b.LastName,
		b.Role, b.IsVerified, b.PasswordHash, b.CreatedAt, b.UpdatedAt)
	mock.ExpectQuery(`(?s)^SELECT\s+uid,.*FROM\s+users\s+ORDER\s+BY\s+created_at$`).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bob@example.com", got[1].Email)
	assert.Equal(t, RoleAdmin, got[1].Role)
}

func TestPostgresDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE\s+FROM\s+users\s+WHERE\s+uid\s*=\s*\$1`).
		WithArgs("uid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+users`).
		WithArgs("uid-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "uid-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "uid-2"), ErrNotFound)
}
