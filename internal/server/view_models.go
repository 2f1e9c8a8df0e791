package server

import "quill/internal/models"

// PageSize is the fixed number of posts per listing page.
const PageSize = 10

// Paginator describes one page of a post listing.
type Paginator struct {
	Page     int
	PageSize int
	Total    int64
}

func newPaginator(page int, total int64) Paginator {
	return Paginator{Page: page, PageSize: PageSize, Total: total}
}

func (p Paginator) TotalPages() int {
	if p.Total == 0 || p.PageSize == 0 {
		return 1
	}
	pages := int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
	if pages < 1 {
		pages = 1
	}
	return pages
}

func (p Paginator) HasPrev() bool { return p.Page > 1 }
func (p Paginator) HasNext() bool { return p.Page < p.TotalPages() }
func (p Paginator) PrevPage() int { return p.Page - 1 }
func (p Paginator) NextPage() int { return p.Page + 1 }

// IndexPage backs the front page template.
type IndexPage struct {
	Posts     []*models.Post
	Paginator Paginator
}

// CategoryPage backs the per-category listing template.
type CategoryPage struct {
	Category  *models.Category
	Posts     []*models.Post
	Paginator Paginator
}

// ProfilePage backs a user's profile listing. IsOwner widens the listing to
// the author's own hidden posts and exposes edit links.
type ProfilePage struct {
	Profile   *models.User
	IsOwner   bool
	Posts     []*models.Post
	Paginator Paginator
}

// CommentFormData carries the comment form state across a failed submit.
type CommentFormData struct {
	Text   string
	Errors map[string]string
}

// PostDetailPage backs the post detail template.
type PostDetailPage struct {
	Post          *models.Post
	Comments      []*models.Comment
	CanEdit       bool
	Authenticated bool
	CurrentUserID uint
	CommentForm   CommentFormData
}

// PostFormData carries the post form state across a failed submit.
type PostFormData struct {
	Title      string
	Text       string
	PubDate    string
	CategoryID uint
	LocationID uint
	ImageURL   string
	Errors     map[string]string
}

// PostFormPage backs the create/edit/delete post templates. PostID is zero
// when creating.
type PostFormPage struct {
	Form       PostFormData
	Categories []*models.Category
	Locations  []*models.Location
	PostID     uint
	Deleting   bool
}

// CommentFormPage backs the edit/delete comment templates.
type CommentFormPage struct {
	PostID    uint
	CommentID uint
	Form      CommentFormData
	Deleting  bool
}

// ProfileFormData carries the profile form state across a failed submit.
type ProfileFormData struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Errors    map[string]string
}

// ProfileFormPage backs the edit-profile template.
type ProfileFormPage struct {
	Form  ProfileFormData
	Saved bool
}

// AuthFormPage backs the login and signup templates.
type AuthFormPage struct {
	Username string
	Email    string
	Next     string
	Error    string
}

// ErrorPage backs the generic error template.
type ErrorPage struct {
	Status  int
	Message string
}
