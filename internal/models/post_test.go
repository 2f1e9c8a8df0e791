package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostPubliclyVisible(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	published := &Category{ID: 1, Title: "Travel", Slug: "travel", IsPublished: true}
	hidden := &Category{ID: 2, Title: "Drafts", Slug: "drafts", IsPublished: false}

	tests := []struct {
		name    string
		post    Post
		visible bool
	}{
		{
			name:    "published post in published category",
			post:    Post{IsPublished: true, Category: published, PubDate: now.Add(-time.Hour)},
			visible: true,
		},
		{
			name:    "unpublished post",
			post:    Post{IsPublished: false, Category: published, PubDate: now.Add(-time.Hour)},
			visible: false,
		},
		{
			name:    "unpublished category hides the post",
			post:    Post{IsPublished: true, Category: hidden, PubDate: now.Add(-time.Hour)},
			visible: false,
		},
		{
			name:    "null category hides the post",
			post:    Post{IsPublished: true, Category: nil, PubDate: now.Add(-time.Hour)},
			visible: false,
		},
		{
			name:    "future publish date hides the post",
			post:    Post{IsPublished: true, Category: published, PubDate: now.Add(time.Hour)},
			visible: false,
		},
		{
			name:    "publish date exactly now is visible",
			post:    Post{IsPublished: true, Category: published, PubDate: now},
			visible: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, tt.post.PubliclyVisible(now))
		})
	}
}
