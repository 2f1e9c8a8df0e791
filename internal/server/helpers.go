// Package server contains the HTTP handlers for the blog's HTML pages.
package server

import (
	"errors"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 404 page and returns errResponseWritten, matching
// how an unroutable path behaves. Callers should check:
// if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = s.renderNotFound(c, "No such "+humanizeParam(param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "postId" -> "post", "commentId" -> "comment".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " "))
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// parsePage reads the 1-based page number from the query string.
func parsePage(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return page
}

// currentUserID reports the authenticated user set by the CurrentUser
// middleware, if any.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}

// mustUserID is for handlers behind LoginRequired, where a missing user is a
// wiring bug rather than a client error.
func mustUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

func (s *Server) renderError(c *fiber.Ctx, status int, message string) error {
	if err := s.renderer.Render(c, status, "error", ErrorPage{Status: status, Message: message}); err != nil {
		return c.Status(status).SendString(message)
	}
	return nil
}

// renderNotFound answers for missing pages and for content the viewer is not
// allowed to know exists. Both cases produce the same page.
func (s *Server) renderNotFound(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Page not found"
	}
	return s.renderError(c, fiber.StatusNotFound, message)
}

func (s *Server) renderForbidden(c *fiber.Ctx) error {
	return s.renderError(c, fiber.StatusForbidden, "You do not have permission to do that")
}
