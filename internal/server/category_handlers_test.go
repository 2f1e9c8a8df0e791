package server

import (
	"testing"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryPage(t *testing.T) {
	_, app, db := setupTestServer(t)

	alice := createTestUser(t, db, "alice")
	travel := createTestCategory(t, db, "travel", true)
	food := createTestCategory(t, db, "food", true)

	createTestPost(t, db, alice, travel, func(p *models.Post) { p.Title = "Trip to Lisbon" })
	createTestPost(t, db, alice, travel, func(p *models.Post) {
		p.Title = "Trip draft"
		p.IsPublished = false
	})
	createTestPost(t, db, alice, food, func(p *models.Post) { p.Title = "Bread notes" })

	resp, body := getPage(t, app, "/category/travel/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Trip to Lisbon")
	assert.NotContains(t, body, "Trip draft")
	assert.NotContains(t, body, "Bread notes")
}

func TestCategoryHiddenOrMissing404s(t *testing.T) {
	_, app, db := setupTestServer(t)

	createTestCategory(t, db, "secret", false)

	// An unpublished category is indistinguishable from a missing one.
	resp, _ := getPage(t, app, "/category/secret/", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = getPage(t, app, "/category/nope/", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
