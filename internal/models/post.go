package models

import "time"

// Post represents a blog post written by a profile owner.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AuthorName is not persisted; joined from users at query time
	AuthorName string `gorm:"->;-:migration" json:"author_name"`
	// LikeCount is not persisted; computed at query time
	LikeCount int64 `gorm:"->;-:migration" json:"like_count"`
	// CommentCount is not persisted; computed at query time
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
}
