package repository

import (
	"context"
	"errors"
	"fmt"

	"analytics/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	FindByUserAndTitle(ctx context.Context, userID uint, title string) (*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, done := instrument(ctx, "Create", "posts")
	defer done(&err)

	if err := r.db.WithContext(ctx).Omit("User").Create(post).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return models.NewNotFoundError("User", post.UserID)
		}
		return fmt.Errorf("creating post: %w", err)
	}
	return nil
}

// withCounts projects posts with their author and distinct like/comment
// counts. Both child tables are LEFT JOINed onto the same row, so plain
// COUNT(*) would multiply; counting distinct child ids does not.
func (r *postRepository) withCounts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(`posts.*, users.name AS author_name,
			COUNT(DISTINCT likes.id) AS like_count,
			COUNT(DISTINCT comments.id) AS comment_count`).
		Joins("JOIN users ON users.id = posts.user_id").
		Joins("LEFT JOIN likes ON likes.post_id = posts.id").
		Joins("LEFT JOIN comments ON comments.post_id = posts.id").
		Group("posts.id, users.id")
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (post *models.Post, err error) {
	ctx, done := instrument(ctx, "GetByID", "posts")
	defer done(&err)

	var p models.Post
	if err := r.withCounts(ctx).Where("posts.id = ?", id).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, fmt.Errorf("loading post %d: %w", id, err)
	}
	return &p, nil
}

func (r *postRepository) List(ctx context.Context) (posts []*models.Post, err error) {
	ctx, done := instrument(ctx, "List", "posts")
	defer done(&err)

	posts = []*models.Post{}
	if err := r.withCounts(ctx).
		Order("posts.created_at DESC, posts.id DESC").
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// FindByUserAndTitle returns a plain post row without counts.
func (r *postRepository) FindByUserAndTitle(ctx context.Context, userID uint, title string) (post *models.Post, err error) {
	ctx, done := instrument(ctx, "FindByUserAndTitle", "posts")
	defer done(&err)

	var p models.Post
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND title = ?", userID, title).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", title)
		}
		return nil, fmt.Errorf("loading post %q: %w", title, err)
	}
	return &p, nil
}
