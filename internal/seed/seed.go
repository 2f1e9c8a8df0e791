package seed

import (
	"fmt"
	"log"

	"quill/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
	ShouldClean     bool
}

var defaultCategories = []struct {
	Title     string
	Slug      string
	Published bool
}{
	{"Travel", "travel", true},
	{"Food", "food", true},
	{"Technology", "technology", true},
	{"Books", "books", true},
	{"Music", "music", true},
	{"Drafts Corner", "drafts-corner", false},
}

var defaultLocations = []struct {
	Name      string
	Published bool
}{
	{"Lisbon", true},
	{"Kyoto", true},
	{"Reykjavik", true},
	{"Oaxaca", true},
	{"Tbilisi", true},
	{"Atlantis", false},
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes seeded data in dependency order.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.Comment{},
		&models.Post{},
		&models.Location{},
		&models.Category{},
		&models.User{},
	} {
		if err := s.db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// Run populates the database according to the options.
func (s *Seeder) Run(opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("clearing existing data: %w", err)
		}
	}

	users, err := s.factory.CreateUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("creating users: %w", err)
	}
	log.Printf("created %d users (password %q)", len(users), DevPassword)

	var categories []*models.Category
	for _, c := range defaultCategories {
		category, err := s.factory.CreateCategory(c.Title, c.Slug, c.Published)
		if err != nil {
			return fmt.Errorf("creating category %q: %w", c.Slug, err)
		}
		categories = append(categories, category)
	}

	var locations []*models.Location
	for _, l := range defaultLocations {
		location, err := s.factory.CreateLocation(l.Name, l.Published)
		if err != nil {
			return fmt.Errorf("creating location %q: %w", l.Name, err)
		}
		locations = append(locations, location)
	}

	if len(users) == 0 {
		return nil
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := users[i%len(users)]
		post, err := s.factory.CreatePost(author, categories, locations)
		if err != nil {
			return fmt.Errorf("creating post: %w", err)
		}
		for j := 0; j < opts.CommentsPerPost; j++ {
			commenter := users[(i+j+1)%len(users)]
			if _, err := s.factory.CreateComment(post, commenter); err != nil {
				return fmt.Errorf("creating comment: %w", err)
			}
		}
	}
	log.Printf("created %d posts", opts.NumPosts)

	return nil
}
