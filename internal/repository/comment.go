package repository

import (
	"context"
	"errors"
	"fmt"

	"analytics/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	ListActivityForOwner(ctx context.Context, ownerID uint, limit int) ([]models.ActivityEvent, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (err error) {
	ctx, done := instrument(ctx, "Create", "comments")
	defer done(&err)

	if err := r.db.WithContext(ctx).Omit("Post", "User").Create(comment).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return models.NewNotFoundError("Post", comment.PostID)
		}
		return fmt.Errorf("creating comment: %w", err)
	}
	return nil
}

// ListByPost returns comments on postID newest first, with commenter names.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) (comments []*models.Comment, err error) {
	ctx, done := instrument(ctx, "ListByPost", "comments")
	defer done(&err)

	comments = []*models.Comment{}
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("comments.*, users.name AS user_name").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at DESC, comments.id DESC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("listing comments for post %d: %w", postID, err)
	}
	return comments, nil
}

// ListActivityForOwner returns the newest comments left on ownerID's posts.
// A non-positive limit returns every row.
func (r *commentRepository) ListActivityForOwner(ctx context.Context, ownerID uint, limit int) (events []models.ActivityEvent, err error) {
	ctx, done := instrument(ctx, "ListActivityForOwner", "comments")
	defer done(&err)

	q := r.db.WithContext(ctx).
		Table("comments").
		Select(`comments.id AS id, users.name AS actor_name, posts.title AS post_title,
			comments.content AS comment_text, comments.created_at AS created_at`).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("posts.user_id = ?", ownerID).
		Order("comments.created_at DESC, comments.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	events = []models.ActivityEvent{}
	if err := q.Scan(&events).Error; err != nil {
		return nil, fmt.Errorf("listing comment activity for user %d: %w", ownerID, err)
	}
	for i := range events {
		events[i].Type = models.ActivityTypeComment
	}
	return events, nil
}
