// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// AnonymousName is stored for visitors who did not give a name.
const AnonymousName = "Anonymous"

// User is a profile owner, author, commenter, liker or viewer.
// Names are unique; every interaction resolves its actor by name.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Title     *string   `gorm:"size:255" json:"title"`
	About     *string   `gorm:"type:text" json:"about"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeName trims name and substitutes AnonymousName for blank input.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return AnonymousName
	}
	return name
}
