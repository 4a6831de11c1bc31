package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/returnpoint/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupUserTestRepository creates a user repository with a mock database
func setupUserTestRepository(t *testing.T) (*userRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	repo := NewUserRepository(db, logger)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

var userColumns = []string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}

func TestNewUserRepository(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	db := &sql.DB{}

	repo := NewUserRepository(db, logger)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, logger, repo.logger)
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		user          *models.User
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		expectedID    int
	}{
		{
			name: "success",
			user: &models.User{
				Username:     "alice",
				Email:        "a@x.com",
				PasswordHash: "hashedpassword",
				Role:         models.RoleUser,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users \(username, email, password_hash, role, created_at, updated_at\)`).
					WithArgs("alice", "a@x.com", "hashedpassword", "user", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(7, 1))
			},
			expectedID: 7,
		},
		{
			name: "duplicate entry maps to conflict",
			user: &models.User{
				Username:     "alice",
				Email:        "a@x.com",
				PasswordHash: "hashedpassword",
				Role:         models.RoleUser,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'username'"})
			},
			expectedError: models.ErrConflict,
		},
		{
			name: "database error on insert",
			user: &models.User{
				Username:     "alice",
				Email:        "a@x.com",
				PasswordHash: "hashedpassword",
				Role:         models.RoleUser,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: errors.New("failed to create user"),
		},
		{
			name: "error getting last insert id",
			user: &models.User{
				Username:     "alice",
				Email:        "a@x.com",
				PasswordHash: "hashedpassword",
				Role:         models.RoleUser,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnResult(sqlmock.NewErrorResult(errors.New("last insert id error")))
			},
			expectedError: errors.New("failed to get last insert id"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.user)

			switch {
			case tt.expectedError == nil:
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, tt.user.ID)
				assert.False(t, tt.user.CreatedAt.IsZero())
			case errors.Is(tt.expectedError, models.ErrConflict):
				assert.ErrorIs(t, err, models.ErrConflict)
			default:
				assert.ErrorContains(t, err, tt.expectedError.Error())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		userID        int
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		expectedUser  *models.User
	}{
		{
			name:   "success",
			userID: 1,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(userColumns).
					AddRow(1, "alice", "a@x.com", "hash", "admin", createdAt, createdAt)
				mock.ExpectQuery(`SELECT id, username, email, password_hash, role, created_at, updated_at FROM users WHERE id = \?`).
					WithArgs(1).
					WillReturnRows(rows)
			},
			expectedUser: &models.User{
				ID:           1,
				Username:     "alice",
				Email:        "a@x.com",
				PasswordHash: "hash",
				Role:         models.RoleAdmin,
				CreatedAt:    createdAt,
				UpdatedAt:    createdAt,
			},
		},
		{
			name:   "not found",
			userID: 99,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).
					WithArgs(99).
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: models.ErrNotFound,
		},
		{
			name:   "database error",
			userID: 1,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).
					WithArgs(1).
					WillReturnError(errors.New("connection lost"))
			},
			expectedError: errors.New("failed to get user by id"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			user, err := repo.GetByID(context.Background(), tt.userID)

			switch {
			case tt.expectedError == nil:
				require.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			case errors.Is(tt.expectedError, models.ErrNotFound):
				assert.ErrorIs(t, err, models.ErrNotFound)
				assert.Nil(t, user)
			default:
				assert.ErrorContains(t, err, tt.expectedError.Error())
				assert.Nil(t, user)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		now := time.Now().UTC()
		rows := sqlmock.NewRows(userColumns).
			AddRow(3, "bob", "b@x.com", "hash", "user", now, now)
		mock.ExpectQuery(`SELECT .* FROM users WHERE email = \?`).
			WithArgs("b@x.com").
			WillReturnRows(rows)

		user, err := repo.GetByEmail(context.Background(), "b@x.com")

		require.NoError(t, err)
		assert.Equal(t, 3, user.ID)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT .* FROM users WHERE email = \?`).
			WithArgs("nobody@x.com").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByEmail(context.Background(), "nobody@x.com")

		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(sqlmock.Sqlmock)
		expectedExists bool
		expectedError  bool
	}{
		{
			name: "exists",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE email = \?\)`).
					WithArgs("a@x.com").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			expectedExists: true,
		},
		{
			name: "does not exist",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE email = \?\)`).
					WithArgs("a@x.com").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			expectedExists: false,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("a@x.com").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			exists, err := repo.ExistsByEmail(context.Background(), "a@x.com")

			if tt.expectedError {
				assert.Error(t, err)
				assert.False(t, exists)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedExists, exists)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE username = \?\)`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByUsername(context.Background(), "alice")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users SET username = \?, email = \?, password_hash = \?, updated_at = \? WHERE id = \?`).
					WithArgs("alice2", "a2@x.com", "newhash", sqlmock.AnyArg(), 1).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "duplicate entry maps to conflict",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
			},
			expectedError: models.ErrConflict,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: errors.New("failed to update user"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			user := &models.User{ID: 1, Username: "alice2", Email: "a2@x.com", PasswordHash: "newhash"}
			err := repo.Update(context.Background(), user)

			switch {
			case tt.expectedError == nil:
				require.NoError(t, err)
				assert.False(t, user.UpdatedAt.IsZero())
			case errors.Is(tt.expectedError, models.ErrConflict):
				assert.ErrorIs(t, err, models.ErrConflict)
			default:
				assert.ErrorContains(t, err, tt.expectedError.Error())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, isDuplicateKeyError(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDuplicateKeyError(&mysql.MySQLError{Number: 1146}))
	assert.False(t, isDuplicateKeyError(errors.New("Duplicate entry")))
	assert.False(t, isDuplicateKeyError(nil))
}
