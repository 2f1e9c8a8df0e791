package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Post{},
		&models.Comment{},
	))
	return db
}

func mkUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func mkCategory(t *testing.T, db *gorm.DB, slug string, published bool) *models.Category {
	t.Helper()
	category := &models.Category{Title: slug, Slug: slug, IsPublished: published}
	require.NoError(t, db.Create(category).Error)
	return category
}

func mkPost(t *testing.T, db *gorm.DB, author *models.User, category *models.Category, overrides ...func(*models.Post)) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       "post",
		Text:        "text",
		PubDate:     time.Now().UTC().Add(-time.Hour),
		AuthorID:    author.ID,
		IsPublished: true,
	}
	if category != nil {
		id := category.ID
		post.CategoryID = &id
	}
	for _, override := range overrides {
		override(post)
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestPostListVisibilityPredicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	pubCat := mkCategory(t, db, "travel", true)
	hiddenCat := mkCategory(t, db, "secret", false)

	visible := mkPost(t, db, alice, pubCat)
	mkPost(t, db, alice, pubCat, func(p *models.Post) { p.IsPublished = false })
	mkPost(t, db, alice, pubCat, func(p *models.Post) {
		p.PubDate = time.Now().UTC().Add(time.Hour)
	})
	mkPost(t, db, alice, hiddenCat)
	mkPost(t, db, alice, nil)

	posts, total, err := repo.List(ctx, PostQuery{PublicOnly: true, Annotate: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, visible.ID, posts[0].ID)
	require.NotNil(t, posts[0].Category)
	assert.Equal(t, "travel", posts[0].Category.Slug)

	// Without the predicate the author filter sees every post.
	_, total, err = repo.List(ctx, PostQuery{AuthorID: alice.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
}

func TestPostListOrderAndCommentCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	bob := mkUser(t, db, "bob")
	cat := mkCategory(t, db, "travel", true)

	oldest := mkPost(t, db, alice, cat, func(p *models.Post) {
		p.PubDate = time.Now().UTC().Add(-72 * time.Hour)
	})
	newest := mkPost(t, db, alice, cat, func(p *models.Post) {
		p.PubDate = time.Now().UTC().Add(-time.Hour)
	})
	middle := mkPost(t, db, alice, cat, func(p *models.Post) {
		p.PubDate = time.Now().UTC().Add(-24 * time.Hour)
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Comment{
			Text: "c", PostID: middle.ID, AuthorID: bob.ID,
		}).Error)
	}

	posts, _, err := repo.List(ctx, PostQuery{Annotate: true})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, newest.ID, posts[0].ID)
	assert.Equal(t, middle.ID, posts[1].ID)
	assert.Equal(t, oldest.ID, posts[2].ID)
	assert.EqualValues(t, 3, posts[1].CommentCount)
	assert.EqualValues(t, 0, posts[0].CommentCount)
}

func TestPostListPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	cat := mkCategory(t, db, "travel", true)
	for i := 0; i < 12; i++ {
		i := i
		mkPost(t, db, alice, cat, func(p *models.Post) {
			p.PubDate = time.Now().UTC().Add(-time.Duration(i+1) * time.Hour)
		})
	}

	posts, total, err := repo.List(ctx, PostQuery{PublicOnly: true, Annotate: true, Page: 3, PageSize: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
	assert.Len(t, posts, 2)
}

func TestPostGetByIDIncludesCommentCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	cat := mkCategory(t, db, "travel", true)
	post := mkPost(t, db, alice, cat)
	require.NoError(t, db.Create(&models.Comment{Text: "c", PostID: post.ID, AuthorID: alice.ID}).Error)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.CommentCount)
	require.NotNil(t, got.Category)
	assert.Equal(t, alice.ID, got.Author.ID)

	_, err = repo.GetByID(ctx, 9999)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestPostDeleteRemovesComments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	cat := mkCategory(t, db, "travel", true)
	post := mkPost(t, db, alice, cat)
	keep := mkPost(t, db, alice, cat)
	require.NoError(t, db.Create(&models.Comment{Text: "gone", PostID: post.ID, AuthorID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{Text: "stays", PostID: keep.ID, AuthorID: alice.ID}).Error)

	require.NoError(t, repo.Delete(ctx, post.ID))

	var comments []models.Comment
	require.NoError(t, db.Find(&comments).Error)
	require.Len(t, comments, 1)
	assert.Equal(t, keep.ID, comments[0].PostID)
}

func TestCategoryDeleteOrphansPosts(t *testing.T) {
	db := setupTestDB(t)
	catRepo := NewCategoryRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	cat := mkCategory(t, db, "travel", true)
	post := mkPost(t, db, alice, cat)

	require.NoError(t, catRepo.Delete(ctx, cat.ID))

	// The post survives without a category and drops out of public listings.
	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Nil(t, reloaded.CategoryID)

	_, total, err := postRepo.List(ctx, PostQuery{PublicOnly: true})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCategoryGetPublishedBySlug(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	mkCategory(t, db, "travel", true)
	mkCategory(t, db, "secret", false)

	got, err := repo.GetPublishedBySlug(ctx, "travel")
	require.NoError(t, err)
	assert.Equal(t, "travel", got.Slug)

	_, err = repo.GetPublishedBySlug(ctx, "secret")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	_, err = repo.GetPublishedBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestLocationDeleteOrphansPosts(t *testing.T) {
	db := setupTestDB(t)
	locRepo := NewLocationRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	cat := mkCategory(t, db, "travel", true)
	location := &models.Location{Name: "Lisbon", IsPublished: true}
	require.NoError(t, db.Create(location).Error)
	post := mkPost(t, db, alice, cat, func(p *models.Post) {
		id := location.ID
		p.LocationID = &id
	})

	require.NoError(t, locRepo.Delete(ctx, location.ID))

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Nil(t, reloaded.LocationID)
}

func TestCommentListByPost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	cat := mkCategory(t, db, "travel", true)
	post := mkPost(t, db, alice, cat)

	first := &models.Comment{Text: "first", PostID: post.ID, AuthorID: alice.ID,
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour)}
	second := &models.Comment{Text: "second", PostID: post.ID, AuthorID: alice.ID,
		CreatedAt: time.Now().UTC().Add(-time.Hour)}
	require.NoError(t, db.Create(second).Error)
	require.NoError(t, db.Create(first).Error)

	comments, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	// Oldest first.
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "alice", comments[0].Author.Username)

	count, err := repo.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
