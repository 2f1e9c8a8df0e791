// Command main runs the database seeder for Quill.
package main

import (
	"flag"
	"log"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numPosts := flag.Int("posts", 50, "Number of posts to create")
	commentsPerPost := flag.Int("comments", 2, "Number of comments per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a named seeder preset (e.g. demo, populated)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *preset != "" {
		log.Printf("Applying preset %q (ignoring other flags)", *preset)
		if err := s.ApplyPreset(*preset); err != nil {
			log.Fatalf("Preset seeding failed: %v", err)
		}
		return
	}

	if err := s.Run(seed.Options{
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		CommentsPerPost: *commentsPerPost,
		ShouldClean:     *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
