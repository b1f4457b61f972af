package service

import (
	"errors"
	"testing"

	"analytics/internal/models"
	"analytics/internal/repository"
	"analytics/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (*repository.Store, *testutil.Fixtures, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return repository.NewStore(db), testutil.NewFixtures(t, db), db
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeNotFound)
}

func countUsers(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.User{}).Where("name = ?", name).Count(&n).Error)
	return n
}
