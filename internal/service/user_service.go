// Package service holds the application's use cases on top of the repositories.
package service

import (
	"context"

	"analytics/internal/models"
	"analytics/internal/repository"
)

type UserService struct {
	store *repository.Store
}

func NewUserService(store *repository.Store) *UserService {
	return &UserService{store: store}
}

// GetOrCreate resolves name to a user, creating it on first sight.
func (s *UserService) GetOrCreate(ctx context.Context, name string) (*models.User, error) {
	return s.store.Users.GetOrCreate(ctx, name)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.store.Users.GetByID(ctx, id)
}
