package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"analytics/internal/models"
	"analytics/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	store *repository.Store
}

type AddCommentInput struct {
	PostID   uint
	UserName string
	Text     string
}

func NewCommentService(store *repository.Store) *CommentService {
	return &CommentService{store: store}
}

// AddComment stores a comment by UserName, creating the user if needed.
// The returned comment carries the resolved commenter name.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}
	if in.PostID == 0 {
		return nil, models.NewValidationError("post_id must be a positive integer")
	}

	var comment *models.Comment
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.GetOrCreate(ctx, in.UserName)
		if err != nil {
			return err
		}
		c := &models.Comment{PostID: in.PostID, UserID: user.ID, Content: text}
		if err := tx.Comments.Create(ctx, c); err != nil {
			return err
		}
		c.UserName = user.Name
		comment = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a post's comments newest first. Unknown posts have no comments.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.store.Comments.ListByPost(ctx, postID)
}
