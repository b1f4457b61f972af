// Command main seeds the demo profile and optional visitor activity.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"analytics/internal/config"
	"analytics/internal/database"
	"analytics/internal/middleware"
	"analytics/internal/repository"
	"analytics/internal/seed"
)

func main() {
	demo := flag.Int("demo", 0, "Number of fake visitors to add to the profile dashboard")
	fakerSeed := flag.Int64("faker-seed", 0, "Seed for generated data (0 picks a random seed)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.ConfigureLogger(cfg.Env, os.Stdout)

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	s := seed.NewSeeder(repository.NewStore(db), *fakerSeed)

	owner, posts, err := s.Profile(ctx)
	if err != nil {
		log.Fatalf("Profile seeding failed: %v", err)
	}

	if *demo > 0 {
		stats, err := s.Demo(ctx, owner, posts, *demo)
		if err != nil {
			log.Fatalf("Demo seeding failed: %v", err)
		}
		log.Printf("Added %d views, %d comments and %d likes", stats.Views, stats.Comments, stats.Likes)
	}

	log.Println("Seed data inserted.")
}
