package repository

import (
	"context"
	"errors"
	"fmt"

	"analytics/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	GetOrCreate(ctx context.Context, name string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (user *models.User, err error) {
	ctx, done := instrument(ctx, "GetByID", "users")
	defer done(&err)

	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("loading user %d: %w", id, err)
	}
	return &u, nil
}

// GetByName looks up an exact, already normalized name.
func (r *userRepository) GetByName(ctx context.Context, name string) (user *models.User, err error) {
	ctx, done := instrument(ctx, "GetByName", "users")
	defer done(&err)

	var u models.User
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", name)
		}
		return nil, fmt.Errorf("loading user %q: %w", name, err)
	}
	return &u, nil
}

// GetOrCreate returns the user called name, creating it if needed. Blank
// names resolve to the shared anonymous user. A concurrent insert of the
// same name is absorbed by ON CONFLICT DO NOTHING and a reread.
func (r *userRepository) GetOrCreate(ctx context.Context, name string) (user *models.User, err error) {
	ctx, done := instrument(ctx, "GetOrCreate", "users")
	defer done(&err)

	name = models.NormalizeName(name)
	u := models.User{Name: name}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&u)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("creating user %q: %w", name, res.Error)
	}
	if res.Error == nil && res.RowsAffected == 1 && u.ID != 0 {
		return &u, nil
	}

	var existing models.User
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error; err != nil {
		return nil, fmt.Errorf("rereading user %q: %w", name, err)
	}
	return &existing, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) (err error) {
	ctx, done := instrument(ctx, "Update", "users")
	defer done(&err)

	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("updating user %d: %w", user.ID, err)
	}
	return nil
}
