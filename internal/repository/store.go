// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"analytics/internal/models"
	"analytics/internal/observability"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one database handle. A Store
// built inside Transaction is bound to that transaction.
type Store struct {
	db       *gorm.DB
	Users    UserRepository
	Posts    PostRepository
	Comments CommentRepository
	Likes    LikeRepository
	Views    ViewRepository
}

// NewStore creates a Store whose repositories all use db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Posts:    NewPostRepository(db),
		Comments: NewCommentRepository(db),
		Likes:    NewLikeRepository(db),
		Views:    NewViewRepository(db),
	}
}

// Transaction runs fn as one unit of work. The transaction commits when fn
// returns nil and rolls back on any error or panic.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// instrument opens a repository span and latency timer; the returned func
// closes both and must be deferred with a pointer to the method's error.
func instrument(ctx context.Context, op, table string) (context.Context, func(*error)) {
	ctx, span := observability.StartRepositorySpan(ctx, op, table)
	track := observability.TrackQuery(op, table)
	return ctx, func(errp *error) {
		track()
		var err error
		if errp != nil && !isNotFound(*errp) {
			err = *errp
		}
		observability.EndSpan(span, err)
	}
}

func isNotFound(err error) bool {
	return models.IsNotFound(err)
}
