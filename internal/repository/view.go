package repository

import (
	"context"
	"errors"
	"fmt"

	"analytics/internal/models"

	"gorm.io/gorm"
)

// ViewRepository defines persistence operations for profile views.
type ViewRepository interface {
	Create(ctx context.Context, view *models.ProfileView) error
	RecentByOwner(ctx context.Context, ownerID uint, limit int) ([]*models.ProfileView, error)
}

type viewRepository struct {
	db *gorm.DB
}

// NewViewRepository returns a new ViewRepository implementation.
func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

func (r *viewRepository) Create(ctx context.Context, view *models.ProfileView) (err error) {
	ctx, done := instrument(ctx, "Create", "profile_views")
	defer done(&err)

	if err := r.db.WithContext(ctx).Omit("ProfileOwner", "Viewer").Create(view).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return models.NewNotFoundError("User", view.ProfileOwnerID)
		}
		return fmt.Errorf("recording profile view: %w", err)
	}
	return nil
}

func (r *viewRepository) RecentByOwner(ctx context.Context, ownerID uint, limit int) (views []*models.ProfileView, err error) {
	ctx, done := instrument(ctx, "RecentByOwner", "profile_views")
	defer done(&err)

	views = []*models.ProfileView{}
	if err := r.db.WithContext(ctx).
		Where("profile_owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&views).Error; err != nil {
		return nil, fmt.Errorf("listing views for user %d: %w", ownerID, err)
	}
	return views, nil
}
