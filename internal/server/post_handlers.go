package server

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// pubDateLayout matches the browser's datetime-local input format.
const pubDateLayout = "2006-01-02T15:04"

// Index renders the front page: publicly visible posts, newest first.
func (s *Server) Index(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePage(c)

	posts, total, err := s.postRepo.List(ctx, repository.PostQuery{
		PublicOnly: true,
		Annotate:   true,
		Page:       page,
		PageSize:   PageSize,
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "index listing failed", "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	return s.renderer.Render(c, fiber.StatusOK, "index", IndexPage{
		Posts:     posts,
		Paginator: newPaginator(page, total),
	})
}

// PostDetail renders one post with its comments. The author sees their own
// post regardless of visibility; for everyone else a hidden post answers
// exactly like a missing one.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.renderNotFound(c, "")
		}
		middleware.Logger.ErrorContext(ctx, "post load failed", "post_id", id, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	uid, authed := currentUserID(c)
	if post.AuthorID != uid && !post.PubliclyVisible(time.Now().UTC()) {
		return s.renderNotFound(c, "")
	}

	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "comment listing failed", "post_id", id, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	return s.renderer.Render(c, fiber.StatusOK, "post_detail", PostDetailPage{
		Post:          post,
		Comments:      comments,
		CanEdit:       authed && post.AuthorID == uid,
		Authenticated: authed,
		CurrentUserID: uid,
	})
}

// CreatePostForm renders an empty post form.
func (s *Server) CreatePostForm(c *fiber.Ctx) error {
	form := PostFormData{PubDate: time.Now().Format(pubDateLayout)}
	page, err := s.postFormPage(c.UserContext(), form, 0, false)
	if err != nil {
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	return s.renderer.Render(c, fiber.StatusOK, "post_form", page)
}

// CreatePost stores a new post for the acting user and lands on their
// profile, where the fresh post is visible even when scheduled or unpublished.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	uid := mustUserID(c)

	form, pubDate := s.parsePostForm(c)
	imageURL := s.attachImage(c, &form)
	if len(form.Errors) > 0 {
		page, err := s.postFormPage(ctx, form, 0, false)
		if err != nil {
			return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
		}
		return s.renderer.Render(c, fiber.StatusBadRequest, "post_form", page)
	}

	post := &models.Post{
		Title:    form.Title,
		Text:     form.Text,
		PubDate:  pubDate,
		AuthorID: uid,
		ImageURL: imageURL,
	}
	if form.CategoryID != 0 {
		id := form.CategoryID
		post.CategoryID = &id
	}
	if form.LocationID != 0 {
		id := form.LocationID
		post.LocationID = &id
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		middleware.Logger.ErrorContext(ctx, "post create failed", "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	observability.PostsCreatedTotal.Inc()

	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		return seeOther(c, indexURL())
	}
	return seeOther(c, profileURL(user.Username))
}

// EditPostForm renders the post form prefilled with the stored values.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	post := s.loadOwnPost(c)
	if post == nil {
		return nil
	}

	page, err := s.postFormPage(c.UserContext(), postFormFrom(post), post.ID, false)
	if err != nil {
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	return s.renderer.Render(c, fiber.StatusOK, "post_form", page)
}

// EditPost applies the submitted form to an owned post.
func (s *Server) EditPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	post := s.loadOwnPost(c)
	if post == nil {
		return nil
	}

	form, pubDate := s.parsePostForm(c)
	imageURL := s.attachImage(c, &form)
	if len(form.Errors) > 0 {
		form.ImageURL = post.ImageURL
		page, err := s.postFormPage(ctx, form, post.ID, false)
		if err != nil {
			return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
		}
		return s.renderer.Render(c, fiber.StatusBadRequest, "post_form", page)
	}

	post.Title = form.Title
	post.Text = form.Text
	post.PubDate = pubDate
	post.CategoryID = nil
	if form.CategoryID != 0 {
		id := form.CategoryID
		post.CategoryID = &id
	}
	post.LocationID = nil
	if form.LocationID != 0 {
		id := form.LocationID
		post.LocationID = &id
	}
	if imageURL != "" {
		post.ImageURL = imageURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		middleware.Logger.ErrorContext(ctx, "post update failed", "post_id", post.ID, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	return seeOther(c, postDetailURL(post.ID))
}

// DeletePostForm renders the delete confirmation page.
func (s *Server) DeletePostForm(c *fiber.Ctx) error {
	post := s.loadOwnPost(c)
	if post == nil {
		return nil
	}
	page, err := s.postFormPage(c.UserContext(), postFormFrom(post), post.ID, true)
	if err != nil {
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	return s.renderer.Render(c, fiber.StatusOK, "post_form", page)
}

// DeletePost removes an owned post together with its comments.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	post := s.loadOwnPost(c)
	if post == nil {
		return nil
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		middleware.Logger.ErrorContext(ctx, "post delete failed", "post_id", post.ID, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	return seeOther(c, indexURL())
}

// loadOwnPost loads the addressed post for a mutating handler and applies the
// ownership check. A nil return means the response is already written: 404
// for missing posts, a redirect to the post detail page when someone else's
// post is addressed.
func (s *Server) loadOwnPost(c *fiber.Ctx) *models.Post {
	ctx := c.UserContext()
	id, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = s.renderNotFound(c, "")
		} else {
			middleware.Logger.ErrorContext(ctx, "post load failed", "post_id", id, "error", err)
			_ = s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
		}
		return nil
	}

	if d := ownedBy(post.AuthorID, mustUserID(c)); !d.Allowed {
		middleware.Logger.InfoContext(ctx, "post mutation denied",
			"post_id", post.ID, "reason", d.Reason)
		_ = seeOther(c, postDetailURL(post.ID))
		return nil
	}
	return post
}

// parsePostForm reads and validates the shared post form fields.
func (s *Server) parsePostForm(c *fiber.Ctx) (PostFormData, time.Time) {
	form := PostFormData{
		Title:   strings.TrimSpace(c.FormValue("title")),
		Text:    strings.TrimSpace(c.FormValue("text")),
		PubDate: strings.TrimSpace(c.FormValue("pub_date")),
		Errors:  map[string]string{},
	}
	form.CategoryID = parseOptionalID(c.FormValue("category"))
	form.LocationID = parseOptionalID(c.FormValue("location"))

	if form.Title == "" {
		form.Errors["title"] = "Title is required"
	} else if len(form.Title) > 256 {
		form.Errors["title"] = "Title must be at most 256 characters"
	}
	if form.Text == "" {
		form.Errors["text"] = "Text is required"
	}

	var pubDate time.Time
	if form.PubDate == "" {
		form.Errors["pub_date"] = "Publish time is required"
	} else {
		t, err := time.Parse(pubDateLayout, form.PubDate)
		if err != nil {
			t, err = time.Parse(time.RFC3339, form.PubDate)
		}
		if err != nil {
			form.Errors["pub_date"] = "Unrecognized date format"
		} else {
			pubDate = t.UTC()
		}
	}
	return form, pubDate
}

// attachImage stores an uploaded image when present and returns its URL.
// Upload problems become field errors on the form.
func (s *Server) attachImage(c *fiber.Ctx, form *PostFormData) string {
	fh, err := c.FormFile("image")
	if err != nil || fh == nil {
		return ""
	}
	url, err := s.images.SavePostImage(fh)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeValidation {
			form.Errors["image"] = appErr.Message
		} else {
			form.Errors["image"] = "Could not store the image"
		}
		return ""
	}
	return url
}

// postFormPage pairs the form state with the category and location choices.
func (s *Server) postFormPage(ctx context.Context, form PostFormData, postID uint, deleting bool) (PostFormPage, error) {
	categories, err := s.categoryRepo.ListPublished(ctx)
	if err != nil {
		return PostFormPage{}, err
	}
	locations, err := s.locationRepo.ListPublished(ctx)
	if err != nil {
		return PostFormPage{}, err
	}
	return PostFormPage{
		Form:       form,
		Categories: categories,
		Locations:  locations,
		PostID:     postID,
		Deleting:   deleting,
	}, nil
}

func postFormFrom(post *models.Post) PostFormData {
	form := PostFormData{
		Title:    post.Title,
		Text:     post.Text,
		PubDate:  post.PubDate.Format(pubDateLayout),
		ImageURL: post.ImageURL,
	}
	if post.CategoryID != nil {
		form.CategoryID = *post.CategoryID
	}
	if post.LocationID != nil {
		form.LocationID = *post.LocationID
	}
	return form
}

func parseOptionalID(v string) uint {
	if v == "" {
		return 0
	}
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
