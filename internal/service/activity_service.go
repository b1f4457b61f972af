package service

import (
	"context"
	"fmt"
	"sort"

	"analytics/internal/models"
	"analytics/internal/observability"
	"analytics/internal/repository"
)

// Dashboard list limits.
const (
	MaxDashboardLimit      = 50
	DefaultViewsLimit      = 5
	DefaultActivitiesLimit = 8
)

type ActivityService struct {
	store *repository.Store
}

func NewActivityService(store *repository.Store) *ActivityService {
	return &ActivityService{store: store}
}

// RecentActivities returns the newest comments and likes on ownerID's
// posts as one feed. Each source is capped at limit before merging, which
// cannot drop an entry that belongs in the merged top limit.
func (s *ActivityService) RecentActivities(ctx context.Context, ownerID uint, limit int) ([]models.Activity, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	comments, err := s.store.Comments.ListActivityForOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	likes, err := s.store.Likes.ListActivityForOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}

	feed := MergeActivities(comments, likes, limit)
	observability.ActivityFeedSize.Observe(float64(len(feed)))
	return feed, nil
}

// MergeActivities concatenates comments then likes, sorts newest first and
// keeps at most limit entries. Equal timestamps keep input order, so a
// comment precedes a like made at the same instant.
func MergeActivities(comments, likes []models.ActivityEvent, limit int) []models.Activity {
	events := make([]models.ActivityEvent, 0, len(comments)+len(likes))
	events = append(events, comments...)
	events = append(events, likes...)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})

	if limit < 0 {
		limit = 0
	}
	if len(events) > limit {
		events = events[:limit]
	}

	feed := make([]models.Activity, 0, len(events))
	for _, e := range events {
		feed = append(feed, models.Activity{
			ActivityID:   e.ID,
			ActivityType: e.Type,
			ViewerName:   e.ActorName,
			PostTitle:    e.PostTitle,
			Message:      ActivityMessage(e),
			CreatedAt:    e.CreatedAt,
		})
	}
	return feed
}

// ActivityMessage renders the human-readable line for one feed event.
func ActivityMessage(e models.ActivityEvent) string {
	if e.Type == models.ActivityTypeComment {
		return fmt.Sprintf(`%s commented "%s" on "%s"`, e.ActorName, e.CommentText, e.PostTitle)
	}
	return fmt.Sprintf(`%s liked "%s"`, e.ActorName, e.PostTitle)
}

func validateLimit(limit int) error {
	if limit < 1 || limit > MaxDashboardLimit {
		return models.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", MaxDashboardLimit))
	}
	return nil
}
