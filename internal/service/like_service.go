package service

import (
	"context"
	"strings"

	"analytics/internal/models"
	"analytics/internal/repository"
)

type LikeService struct {
	store *repository.Store
}

type AddLikeInput struct {
	PostID   uint
	UserName string
}

func NewLikeService(store *repository.Store) *LikeService {
	return &LikeService{store: store}
}

// AddLike records that UserName likes the post. Liking twice returns the
// existing like.
func (s *LikeService) AddLike(ctx context.Context, in AddLikeInput) (*models.Like, error) {
	if in.PostID == 0 {
		return nil, models.NewValidationError("post_id must be a positive integer")
	}

	var like *models.Like
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.GetOrCreate(ctx, in.UserName)
		if err != nil {
			return err
		}
		like, err = tx.Likes.GetOrCreate(ctx, in.PostID, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return like, nil
}

func (s *LikeService) CountLikes(ctx context.Context, postID uint) (int64, error) {
	return s.store.Likes.CountByPost(ctx, postID)
}

// HasLiked never creates a user: blank or unknown names report false.
func (s *LikeService) HasLiked(ctx context.Context, postID uint, userName string) (bool, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" || postID == 0 {
		return false, nil
	}
	return s.store.Likes.HasLiked(ctx, postID, userName)
}
