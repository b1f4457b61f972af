// Package testutil provides shared database fixtures for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"analytics/internal/database"
	"analytics/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a fresh SQLite database with the full schema in t's temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "analytics_test.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Fixtures inserts rows directly, bypassing the repositories under test.
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
	// Base is the timestamp At offsets from.
	Base time.Time
}

// NewFixtures returns fixtures writing to db.
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db, Base: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// At returns Base shifted by the given number of minutes.
func (f *Fixtures) At(minutes int) time.Time {
	return f.Base.Add(time.Duration(minutes) * time.Minute)
}

// User creates a user called name.
func (f *Fixtures) User(name string) *models.User {
	f.t.Helper()
	u := &models.User{Name: name}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

// Post creates a post by author at the given minute offset.
func (f *Fixtures) Post(author *models.User, title string, minute int) *models.Post {
	f.t.Helper()
	p := &models.Post{UserID: author.ID, Title: title, Content: title + " content", CreatedAt: f.At(minute)}
	require.NoError(f.t, f.db.Create(p).Error)
	return p
}

// Comment creates a comment by author on post at the given minute offset.
func (f *Fixtures) Comment(post *models.Post, author *models.User, text string, minute int) *models.Comment {
	f.t.Helper()
	c := &models.Comment{PostID: post.ID, UserID: author.ID, Content: text, CreatedAt: f.At(minute)}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

// Like creates a like by user on post at the given minute offset.
func (f *Fixtures) Like(post *models.Post, user *models.User, minute int) *models.Like {
	f.t.Helper()
	l := &models.Like{PostID: post.ID, UserID: user.ID, CreatedAt: f.At(minute)}
	require.NoError(f.t, f.db.Create(l).Error)
	return l
}

// View creates a profile view of owner at the given minute offset.
func (f *Fixtures) View(owner, viewer *models.User, minute int) *models.ProfileView {
	f.t.Helper()
	v := &models.ProfileView{
		ProfileOwnerID: owner.ID,
		ViewerID:       &viewer.ID,
		ViewerName:     viewer.Name,
		IPAddress:      "203.0.113.7",
		CreatedAt:      f.At(minute),
	}
	require.NoError(f.t, f.db.Create(v).Error)
	return v
}
