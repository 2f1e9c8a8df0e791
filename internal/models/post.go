// Package models contains the domain entities of the blog.
package models

import (
	"time"
)

// Post is a blog publication. Category and Location are optional references
// that outlive the referenced entity: deleting either nullifies the reference
// on the post, while deleting a post removes its comments.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PubDate     time.Time `gorm:"not null;index" json:"pub_date"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"author"`
	LocationID  *uint     `json:"location_id,omitempty"`
	Location    *Location `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL" json:"location,omitempty"`
	CategoryID  *uint     `gorm:"index" json:"category_id,omitempty"`
	Category    *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	IsPublished bool      `gorm:"default:true" json:"is_published"`
	ImageURL    string    `json:"image_url,omitempty"`
	// CommentCount is not persisted; computed at query time
	CommentCount int       `gorm:"->" json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// PubliclyVisible reports whether the post satisfies the public listing
// predicate at the given instant: the post is published, its category exists
// and is published, and its publish time is not in the future. The same
// predicate is applied in SQL by repository.PostQuery; this form is used when
// the post row is already loaded (post detail).
func (p *Post) PubliclyVisible(now time.Time) bool {
	if !p.IsPublished {
		return false
	}
	if p.Category == nil || !p.Category.IsPublished {
		return false
	}
	return !p.PubDate.After(now)
}
