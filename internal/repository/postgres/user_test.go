package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository"
	apperrors "github.com/infLocus/Crowdsourced-Review-Platform/pkg/errors"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/pagination"
)

var userCols = []string{"id", "username", "email", "password_hash", "avatar", "role", "is_active", "created_at", "updated_at"}

func sampleUser() domain.User {
	return domain.User{
		ID:           authorID,
		Username:     "ada",
		Email:        "ada@example.com",
		PasswordHash: "$2a$12$hash",
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userRow(u domain.User) []any {
	return []any{u.ID, u.Username, u.Email, u.PasswordHash, u.Avatar, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt}
}

func TestUserRepository_Create_DuplicateUsername(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	u := sampleUser()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint \"users_username_key\" (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &u)
	require.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "username")
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	u := sampleUser()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint \"users_email_key\" (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &u)
	require.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "email")
}

func TestUserRepository_GetByEmail_Lowercases(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	u := sampleUser()
	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("ada@example.com").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userRow(u)...))

	got, err := repo.GetByEmail(context.Background(), "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserRepository_List_RoleFilter(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	u := sampleUser()
	mock.ExpectQuery(`WHERE role = \$1`).
		WithArgs("user", 10, 0).
		WillReturnRows(pgxmock.NewRows(append(append([]string{}, userCols...), "total_count")).
			AddRow(append(userRow(u), 1)...))

	users, total, err := repo.List(context.Background(), repository.UserFilter{
		Role: "user",
		Page: pagination.NewParams(1, 10, 10),
	})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
}

func TestUserRepository_List_PagePastEndKeepsTotal(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`WHERE role = \$1`).
		WithArgs("admin", 10, 20).
		WillReturnRows(pgxmock.NewRows(append(append([]string{}, userCols...), "total_count")))
	mock.ExpectQuery(`SELECT count\(\*\) FROM users WHERE role = \$1$`).
		WithArgs("admin").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	users, total, err := repo.List(context.Background(), repository.UserFilter{
		Role: "admin",
		Page: pagination.NewParams(3, 10, 10),
	})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateRole(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	u := sampleUser()
	u.Role = domain.RoleAdmin
	mock.ExpectQuery(`UPDATE users\s+SET role = \$1`).
		WithArgs(domain.RoleAdmin, pgxmock.AnyArg(), u.ID).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userRow(u)...))

	got, err := repo.UpdateRole(context.Background(), u.ID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)
}

func TestRefreshTokenRepository_Revoke_SingleUse(t *testing.T) {
	mock := newMock(t)
	repo := NewRefreshTokenRepository(mock)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WithArgs(pgxmock.AnyArg(), "hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WithArgs(pgxmock.AnyArg(), "hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.Revoke(context.Background(), "hash"))
	assert.ErrorIs(t, repo.Revoke(context.Background(), "hash"), apperrors.ErrNotFound)
}

func TestRefreshTokenRepository_GetByHash(t *testing.T) {
	mock := newMock(t)
	repo := NewRefreshTokenRepository(mock)

	expires := now.Add(time.Hour)
	mock.ExpectQuery("FROM refresh_tokens").
		WithArgs("hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at", "revoked_at"}).
			AddRow("rt-1", authorID, "hash", expires, now, nil))

	rt, err := repo.GetByHash(context.Background(), "hash")
	require.NoError(t, err)
	assert.Equal(t, authorID, rt.UserID)
	assert.Nil(t, rt.RevokedAt)
}
