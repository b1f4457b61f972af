// Package seed populates the database with the demo profile and, optionally,
// synthetic visitor activity for local development.
package seed

import (
	"context"
	"fmt"
	"time"

	"analytics/internal/middleware"
	"analytics/internal/models"
	"analytics/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
)

// ProfileName is the owner of the seeded dashboard.
const ProfileName = "Prajwal"

const (
	profileTitle = "Product Engineer"
	profileAbout = "Builder focused on analytics, data storytelling, and thoughtful UX."
)

type postSeed struct {
	Title   string
	Content string
}

var profilePosts = []postSeed{
	{
		Title:   "Launching my internship project",
		Content: "Shipping the MVP today — full changelog, stack notes, and roadmap inside.",
	},
	{
		Title:   "How I solved a tricky bug",
		Content: "Deep dive into the caching bug that broke analytics and how I fixed it.",
	},
	{
		Title:   "Building profile analytics in public",
		Content: "Documenting the FastAPI + React stack powering this realtime dashboard.",
	},
}

// Seeder writes seed data through the repository store.
type Seeder struct {
	store *repository.Store
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewSeeder creates a Seeder. A zero fakerSeed picks a random one.
func NewSeeder(store *repository.Store, fakerSeed int64) *Seeder {
	return &Seeder{
		store: store,
		faker: gofakeit.New(fakerSeed),
		now:   time.Now,
	}
}

// Profile ensures the demo profile and its posts exist. Running it again
// only fills in missing profile text and posts.
func (s *Seeder) Profile(ctx context.Context) (*models.User, []*models.Post, error) {
	var (
		owner *models.User
		posts []*models.Post
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.GetOrCreate(ctx, ProfileName)
		if err != nil {
			return err
		}
		if user.Title == nil || user.About == nil {
			if user.Title == nil {
				title := profileTitle
				user.Title = &title
			}
			if user.About == nil {
				about := profileAbout
				user.About = &about
			}
			if err := tx.Users.Update(ctx, user); err != nil {
				return err
			}
		}

		for _, ps := range profilePosts {
			post, err := tx.Posts.FindByUserAndTitle(ctx, user.ID, ps.Title)
			if err == nil {
				posts = append(posts, post)
				continue
			}
			if !models.IsNotFound(err) {
				return err
			}
			post = &models.Post{UserID: user.ID, Title: ps.Title, Content: ps.Content}
			if err := tx.Posts.Create(ctx, post); err != nil {
				return err
			}
			posts = append(posts, post)
		}
		owner = user
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("seeding profile: %w", err)
	}

	middleware.Logger.InfoContext(ctx, "Seeded profile",
		"user_id", owner.ID,
		"posts", len(posts),
	)
	return owner, posts, nil
}

// DemoStats counts what Demo inserted.
type DemoStats struct {
	Visitors int
	Views    int
	Comments int
	Likes    int
}

// Demo adds n fake visitors to owner's profile. Each visitor views the
// profile and may comment on or like the given posts, with timestamps spread
// over the previous week so the dashboard feed has some depth.
func (s *Seeder) Demo(ctx context.Context, owner *models.User, posts []*models.Post, n int) (DemoStats, error) {
	var stats DemoStats
	if n <= 0 {
		return stats, nil
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		for i := 0; i < n; i++ {
			visitor, err := tx.Users.GetOrCreate(ctx, s.faker.Name())
			if err != nil {
				return err
			}
			stats.Visitors++

			city, country := s.faker.City(), s.faker.Country()
			lat, lon := s.faker.Latitude(), s.faker.Longitude()
			view := &models.ProfileView{
				ProfileOwnerID: owner.ID,
				ViewerID:       &visitor.ID,
				ViewerName:     visitor.Name,
				IPAddress:      s.faker.IPv4Address(),
				City:           &city,
				Country:        &country,
				Latitude:       &lat,
				Longitude:      &lon,
				CreatedAt:      s.pastTime(),
			}
			if err := tx.Views.Create(ctx, view); err != nil {
				return err
			}
			stats.Views++

			if len(posts) == 0 {
				continue
			}
			post := posts[s.faker.Number(0, len(posts)-1)]

			if s.faker.Bool() {
				comment := &models.Comment{
					PostID:    post.ID,
					UserID:    visitor.ID,
					Content:   s.faker.Sentence(s.faker.Number(4, 12)),
					CreatedAt: s.pastTime(),
				}
				if err := tx.Comments.Create(ctx, comment); err != nil {
					return err
				}
				stats.Comments++
			}
			if s.faker.Bool() {
				created, err := tx.Likes.CreateIfAbsent(ctx, &models.Like{
					PostID:    post.ID,
					UserID:    visitor.ID,
					CreatedAt: s.pastTime(),
				})
				if err != nil {
					return err
				}
				if created {
					stats.Likes++
				}
			}
		}
		return nil
	})
	if err != nil {
		return DemoStats{}, fmt.Errorf("seeding demo activity: %w", err)
	}

	middleware.Logger.InfoContext(ctx, "Seeded demo activity",
		"visitors", stats.Visitors,
		"views", stats.Views,
		"comments", stats.Comments,
		"likes", stats.Likes,
	)
	return stats, nil
}

func (s *Seeder) pastTime() time.Time {
	return s.now().Add(-time.Duration(s.faker.Number(1, 7*24*60)) * time.Minute)
}
