package models

import "time"

// Activity types shown on the dashboard feed.
const (
	ActivityTypeComment = "comment"
	ActivityTypeLike    = "like"
)

// ActivityEvent is a raw row from one of the feed's source streams.
// CommentText is empty for likes.
type ActivityEvent struct {
	ID          uint
	Type        string
	ActorName   string
	PostTitle   string
	CommentText string
	CreatedAt   time.Time
}

// Activity is a rendered feed entry.
type Activity struct {
	ActivityID   uint      `json:"activity_id"`
	ActivityType string    `json:"activity_type"`
	ViewerName   string    `json:"viewer_name"`
	PostTitle    string    `json:"post_title"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}
