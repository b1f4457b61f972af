package service

import (
	"context"

	"analytics/internal/models"
	"analytics/internal/repository"
)

type PostService struct {
	store *repository.Store
}

func NewPostService(store *repository.Store) *PostService {
	return &PostService{store: store}
}

// ListPosts returns every post newest first with author and engagement counts.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.store.Posts.List(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.store.Posts.GetByID(ctx, id)
}
