package repository

import (
	"context"
	"errors"
	"fmt"

	"analytics/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	GetOrCreate(ctx context.Context, postID, userID uint) (*models.Like, error)
	CreateIfAbsent(ctx context.Context, like *models.Like) (bool, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	HasLiked(ctx context.Context, postID uint, userName string) (bool, error)
	ListActivityForOwner(ctx context.Context, ownerID uint, limit int) ([]models.ActivityEvent, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// GetOrCreate returns the like for (postID, userID), inserting it if it does
// not exist yet. Repeated and concurrent calls yield the same row.
func (r *likeRepository) GetOrCreate(ctx context.Context, postID, userID uint) (like *models.Like, err error) {
	ctx, done := instrument(ctx, "GetOrCreate", "likes")
	defer done(&err)

	l := models.Like{PostID: postID, UserID: userID}
	res := r.db.WithContext(ctx).
		Omit("Post", "User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&l)
	switch {
	case res.Error == nil && res.RowsAffected == 1 && l.ID != 0:
		return &l, nil
	case errors.Is(res.Error, gorm.ErrForeignKeyViolated):
		return nil, models.NewNotFoundError("Post", postID)
	case res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey):
		return nil, fmt.Errorf("creating like: %w", res.Error)
	}

	var existing models.Like
	if err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&existing).Error; err != nil {
		return nil, fmt.Errorf("rereading like: %w", err)
	}
	return &existing, nil
}

// CreateIfAbsent inserts like, keeping a preset CreatedAt, unless the user
// already likes the post. It reports whether a row was inserted.
func (r *likeRepository) CreateIfAbsent(ctx context.Context, like *models.Like) (created bool, err error) {
	ctx, done := instrument(ctx, "CreateIfAbsent", "likes")
	defer done(&err)

	res := r.db.WithContext(ctx).
		Omit("Post", "User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(like)
	switch {
	case errors.Is(res.Error, gorm.ErrForeignKeyViolated):
		return false, models.NewNotFoundError("Post", like.PostID)
	case errors.Is(res.Error, gorm.ErrDuplicatedKey):
		return false, nil
	case res.Error != nil:
		return false, fmt.Errorf("creating like: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *likeRepository) CountByPost(ctx context.Context, postID uint) (count int64, err error) {
	ctx, done := instrument(ctx, "CountByPost", "likes")
	defer done(&err)

	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting likes for post %d: %w", postID, err)
	}
	return count, nil
}

// HasLiked resolves userName with a join so that unknown names are never created.
func (r *likeRepository) HasLiked(ctx context.Context, postID uint, userName string) (liked bool, err error) {
	ctx, done := instrument(ctx, "HasLiked", "likes")
	defer done(&err)

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Joins("JOIN users ON users.id = likes.user_id").
		Where("likes.post_id = ? AND users.name = ?", postID, userName).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking like for post %d: %w", postID, err)
	}
	return count > 0, nil
}

// ListActivityForOwner returns the newest likes on ownerID's posts.
// A non-positive limit returns every row.
func (r *likeRepository) ListActivityForOwner(ctx context.Context, ownerID uint, limit int) (events []models.ActivityEvent, err error) {
	ctx, done := instrument(ctx, "ListActivityForOwner", "likes")
	defer done(&err)

	q := r.db.WithContext(ctx).
		Table("likes").
		Select(`likes.id AS id, users.name AS actor_name, posts.title AS post_title,
			likes.created_at AS created_at`).
		Joins("JOIN posts ON posts.id = likes.post_id").
		Joins("JOIN users ON users.id = likes.user_id").
		Where("posts.user_id = ?", ownerID).
		Order("likes.created_at DESC, likes.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	events = []models.ActivityEvent{}
	if err := q.Scan(&events).Error; err != nil {
		return nil, fmt.Errorf("listing like activity for user %d: %w", ownerID, err)
	}
	for i := range events {
		events[i].Type = models.ActivityTypeLike
	}
	return events, nil
}
