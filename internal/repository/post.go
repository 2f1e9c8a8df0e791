// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"quill/internal/models"
	"quill/internal/observability"

	"gorm.io/gorm"
)

// PostQuery is a fully-specified description of a post listing: filters,
// annotation, and page window. Handlers build one per request and the
// repository evaluates it once.
type PostQuery struct {
	// PublicOnly restricts results to the publicly visible predicate:
	// post published, category present and published, publish time not in
	// the future.
	PublicOnly bool
	// Annotate attaches the derived comment count to each post and orders
	// results by publish time, newest first.
	Annotate bool
	// CategoryID, when non-zero, restricts results to one category.
	CategoryID uint
	// AuthorID, when non-zero, restricts results to one author.
	AuthorID uint
	// Page is 1-based; PageSize of 0 disables slicing.
	Page     int
	PageSize int
}

// commentCountSelect derives the per-post comment count in the same query.
const commentCountSelect = "posts.*, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, q PostQuery) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	return r.db.WithContext(ctx).Create(post).Error
}

// GetByID loads a post with its category, location, and author in one pass,
// plus the derived comment count. Visibility is not applied here; the caller
// evaluates it on the loaded row so the entity is fetched exactly once.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()
	var post models.Post
	err := r.db.WithContext(ctx).
		Select(commentCountSelect).
		Preload("Category").
		Preload("Location").
		Preload("Author").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// applyFilters translates the query description into WHERE clauses. The LEFT
// JOIN keeps posts without a category in the row set; the public predicate
// then rejects them because a NULL categories.is_published never equals true.
func (r *postRepository) applyFilters(db *gorm.DB, q PostQuery, now time.Time) *gorm.DB {
	tx := db.Model(&models.Post{}).
		Joins("LEFT JOIN categories ON categories.id = posts.category_id")
	if q.PublicOnly {
		tx = tx.Where(
			"posts.is_published = ? AND categories.is_published = ? AND posts.pub_date <= ?",
			true, true, now,
		)
	}
	if q.CategoryID != 0 {
		tx = tx.Where("posts.category_id = ?", q.CategoryID)
	}
	if q.AuthorID != 0 {
		tx = tx.Where("posts.author_id = ?", q.AuthorID)
	}
	return tx
}

// List evaluates the query description and returns one page of posts plus the
// total number of matching rows for paginator construction.
func (r *postRepository) List(ctx context.Context, q PostQuery) ([]*models.Post, int64, error) {
	defer observability.TrackQuery("list", "posts")()
	now := time.Now().UTC()

	var total int64
	if err := r.applyFilters(r.db.WithContext(ctx), q, now).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx := r.applyFilters(r.db.WithContext(ctx), q, now).
		Preload("Category").
		Preload("Location").
		Preload("Author")
	if q.Annotate {
		tx = tx.Select(commentCountSelect).Order("posts.pub_date DESC")
	}
	if q.PageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Limit(q.PageSize).Offset((page - 1) * q.PageSize)
	}

	var posts []*models.Post
	if err := tx.Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	return r.db.WithContext(ctx).Save(post).Error
}

// Delete removes the post and its comments in one transaction. The comment
// delete is explicit rather than relying on the FK cascade so stores without
// foreign key enforcement behave identically.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}
