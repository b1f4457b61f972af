package repository

import (
	"context"
	"regexp"
	"testing"

	"analytics/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetOrCreate(t *testing.T) {
	store, _, db := setupStore(t)
	ctx := context.Background()

	first, err := store.Users.GetOrCreate(ctx, "Alice")
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	assert.Equal(t, "Alice", first.Name)

	again, err := store.Users.GetOrCreate(ctx, "  Alice  ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	anon, err := store.Users.GetOrCreate(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousName, anon.Name)

	anonAgain, err := store.Users.GetOrCreate(ctx, " \t ")
	require.NoError(t, err)
	assert.Equal(t, anon.ID, anonAgain.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestUserRepository_GetOrCreate_DuplicateKeyRereads(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE name = $1`)).
		WithArgs("Alice", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(5, "Alice"))

	user, err := repo.GetOrCreate(context.Background(), " Alice ")
	require.NoError(t, err)
	assert.Equal(t, uint(5), user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetOrCreate_InsertErrorIsWrapped(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	user, err := repo.GetOrCreate(context.Background(), "Alice")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetOrCreate_CaseSensitive(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	lower, err := store.Users.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	upper, err := store.Users.GetOrCreate(ctx, "Alice")
	require.NoError(t, err)
	assert.NotEqual(t, lower.ID, upper.ID)
}

func TestUserRepository_GetByID(t *testing.T) {
	store, fx, _ := setupStore(t)
	ctx := context.Background()
	alice := fx.User("Alice")

	tests := []struct {
		name         string
		id           uint
		expectedName string
		expectedCode string
	}{
		{name: "found", id: alice.ID, expectedName: "Alice"},
		{name: "missing", id: alice.ID + 100, expectedCode: models.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := store.Users.GetByID(ctx, tt.id)
			if tt.expectedCode != "" {
				var appErr *models.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.expectedCode, appErr.Code)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedName, user.Name)
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	store, fx, _ := setupStore(t)
	ctx := context.Background()
	alice := fx.User("Alice")

	title := "Product Engineer"
	alice.Title = &title
	require.NoError(t, store.Users.Update(ctx, alice))

	reloaded, err := store.Users.GetByName(ctx, "Alice")
	require.NoError(t, err)
	require.NotNil(t, reloaded.Title)
	assert.Equal(t, title, *reloaded.Title)
	assert.Nil(t, reloaded.About)
}
