// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DevPassword is the password assigned to every seeded account.
const DevPassword = "Quill-Dev-Pass-123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with believable profile data.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DevPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  strings.ToLower(gofakeit.Username()),
		Email:     strings.ToLower(gofakeit.Email()),
		Password:  string(hashed),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Bio:       gofakeit.Sentence(10),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUsers persists n users, retrying on the rare username collision.
func (f *Factory) CreateUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		suffix := i
		user, err := f.CreateUser(func(u *models.User) {
			u.Username = fmt.Sprintf("%s%d", u.Username, suffix)
		})
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// CreateCategory persists a category.
func (f *Factory) CreateCategory(title, slug string, published bool) (*models.Category, error) {
	category := &models.Category{
		Title:       title,
		Slug:        slug,
		Description: gofakeit.Sentence(12),
		IsPublished: published,
	}
	if err := f.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// CreateLocation persists a location.
func (f *Factory) CreateLocation(name string, published bool) (*models.Location, error) {
	location := &models.Location{
		Name:        name,
		IsPublished: published,
	}
	if err := f.db.Create(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

// CreatePost persists a post for the given author. Roughly one in ten posts
// is unpublished, one in ten is scheduled in the future, and one in twenty
// has no category, so seeded data exercises every visibility path.
func (f *Factory) CreatePost(author *models.User, categories []*models.Category, locations []*models.Location, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Title:    strings.TrimSuffix(gofakeit.Sentence(5), "."),
		Text:     gofakeit.Paragraph(2, 4, 8, "\n\n"),
		PubDate:  f.pastTime(90),
		AuthorID: author.ID,
	}

	switch f.rng.Intn(10) {
	case 0:
		post.IsPublished = false
	case 1:
		post.PubDate = time.Now().UTC().Add(time.Duration(1+f.rng.Intn(60)) * 24 * time.Hour)
	}

	if len(categories) > 0 && f.rng.Intn(20) != 0 {
		id := categories[f.rng.Intn(len(categories))].ID
		post.CategoryID = &id
	}
	if len(locations) > 0 && f.rng.Intn(3) != 0 {
		id := locations[f.rng.Intn(len(locations))].ID
		post.LocationID = &id
	}

	for _, override := range overrides {
		override(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on the given post.
func (f *Factory) CreateComment(post *models.Post, author *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		Text:     gofakeit.Sentence(8 + f.rng.Intn(12)),
		PostID:   post.ID,
		AuthorID: author.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (f *Factory) pastTime(maxDays int) time.Time {
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().UTC().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)
}
