package render

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplateRendererParsesEmbeddedTemplates(t *testing.T) {
	_, err := NewTemplateRenderer()
	require.NoError(t, err)
}

func TestRender(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return renderer.Render(c, fiber.StatusNotFound, "error", struct {
			Status  int
			Message string
		}{Status: fiber.StatusNotFound, Message: "Nothing here"})
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return renderer.Render(c, fiber.StatusOK, "no-such-template", nil)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Nothing here")

	// An unknown template surfaces as an error instead of a blank page.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
