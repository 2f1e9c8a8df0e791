package models

import "time"

// Category groups posts under a unique, URL-safe slug. Categories are managed
// administratively; posts reference them and survive their deletion with a
// nullified category.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Slug        string    `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	IsPublished bool      `gorm:"default:true" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	Posts       []Post    `gorm:"foreignKey:CategoryID" json:"posts,omitempty"`
}
