package server

import (
	"errors"

	"quill/internal/middleware"
	"quill/internal/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CategoryPosts renders the public listing of one category. An unpublished
// category 404s exactly like a missing one.
func (s *Server) CategoryPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slug := c.Params("slug")

	category, err := s.categoryRepo.GetPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.renderNotFound(c, "")
		}
		middleware.Logger.ErrorContext(ctx, "category load failed", "slug", slug, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	page := parsePage(c)
	posts, total, err := s.postRepo.List(ctx, repository.PostQuery{
		PublicOnly: true,
		Annotate:   true,
		CategoryID: category.ID,
		Page:       page,
		PageSize:   PageSize,
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "category listing failed", "slug", slug, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	return s.renderer.Render(c, fiber.StatusOK, "category", CategoryPage{
		Category:  category,
		Posts:     posts,
		Paginator: newPaginator(page, total),
	})
}
