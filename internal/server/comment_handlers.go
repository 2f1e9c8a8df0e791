package server

import (
	"errors"
	"strings"
	"time"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/observability"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateComment appends a comment to a post. The target post comes from the
// URL path, never from the form body.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	uid := mustUserID(c)

	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.renderNotFound(c, "")
		}
		middleware.Logger.ErrorContext(ctx, "post load failed", "post_id", postID, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	if post.AuthorID != uid && !post.PubliclyVisible(time.Now().UTC()) {
		return s.renderNotFound(c, "")
	}

	text := strings.TrimSpace(c.FormValue("text"))
	if text == "" {
		comments, lerr := s.commentRepo.ListByPost(ctx, post.ID)
		if lerr != nil {
			return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
		}
		return s.renderer.Render(c, fiber.StatusBadRequest, "post_detail", PostDetailPage{
			Post:          post,
			Comments:      comments,
			CanEdit:       post.AuthorID == uid,
			Authenticated: true,
			CurrentUserID: uid,
			CommentForm: CommentFormData{
				Errors: map[string]string{"text": "Comment text is required"},
			},
		})
	}

	comment := &models.Comment{
		Text:     text,
		PostID:   post.ID,
		AuthorID: uid,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		middleware.Logger.ErrorContext(ctx, "comment create failed", "post_id", post.ID, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	observability.CommentsCreatedTotal.Inc()

	return seeOther(c, postDetailURL(post.ID))
}

// EditCommentForm renders the comment form prefilled with the stored text.
func (s *Server) EditCommentForm(c *fiber.Ctx) error {
	comment := s.loadOwnComment(c)
	if comment == nil {
		return nil
	}
	return s.renderer.Render(c, fiber.StatusOK, "comment_form", CommentFormPage{
		PostID:    comment.PostID,
		CommentID: comment.ID,
		Form:      CommentFormData{Text: comment.Text},
	})
}

// EditComment replaces the text of an owned comment.
func (s *Server) EditComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	comment := s.loadOwnComment(c)
	if comment == nil {
		return nil
	}

	text := strings.TrimSpace(c.FormValue("text"))
	if text == "" {
		return s.renderer.Render(c, fiber.StatusBadRequest, "comment_form", CommentFormPage{
			PostID:    comment.PostID,
			CommentID: comment.ID,
			Form: CommentFormData{
				Errors: map[string]string{"text": "Comment text is required"},
			},
		})
	}

	comment.Text = text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		middleware.Logger.ErrorContext(ctx, "comment update failed", "comment_id", comment.ID, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	return seeOther(c, postDetailURL(comment.PostID))
}

// DeleteCommentForm renders the delete confirmation page.
func (s *Server) DeleteCommentForm(c *fiber.Ctx) error {
	comment := s.loadOwnComment(c)
	if comment == nil {
		return nil
	}
	return s.renderer.Render(c, fiber.StatusOK, "comment_form", CommentFormPage{
		PostID:    comment.PostID,
		CommentID: comment.ID,
		Form:      CommentFormData{Text: comment.Text},
		Deleting:  true,
	})
}

// DeleteComment removes an owned comment.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	comment := s.loadOwnComment(c)
	if comment == nil {
		return nil
	}

	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		middleware.Logger.ErrorContext(ctx, "comment delete failed", "comment_id", comment.ID, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	return seeOther(c, postDetailURL(comment.PostID))
}

// loadOwnComment resolves the addressed comment for a mutating handler. The
// ownership check runs here, before any form processing, and a denial is a
// hard 403 rather than the redirect posts get. A nil return means the
// response is already written.
func (s *Server) loadOwnComment(c *fiber.Ctx) *models.Comment {
	ctx := c.UserContext()
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = s.renderNotFound(c, "")
		} else {
			middleware.Logger.ErrorContext(ctx, "comment load failed", "comment_id", commentID, "error", err)
			_ = s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
		}
		return nil
	}

	// The comment must live under the post named in the path.
	if comment.PostID != postID {
		_ = s.renderNotFound(c, "")
		return nil
	}

	if d := ownedBy(comment.AuthorID, mustUserID(c)); !d.Allowed {
		middleware.Logger.InfoContext(ctx, "comment mutation denied",
			"comment_id", comment.ID, "reason", d.Reason)
		_ = s.renderForbidden(c)
		return nil
	}
	return comment
}
