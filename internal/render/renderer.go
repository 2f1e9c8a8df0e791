// Package render is the seam between handlers and HTML presentation.
// Handlers hand a view-model and a template name to a Renderer; the default
// implementation executes embedded html/template files. Presentation is an
// external collaborator as far as the handlers are concerned, so swapping the
// Renderer swaps the whole rendering stack.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer renders a named view with the given view-model.
type Renderer interface {
	Render(c *fiber.Ctx, status int, name string, data interface{}) error
}

// TemplateRenderer is the default html/template-backed Renderer.
type TemplateRenderer struct {
	tmpl *template.Template
}

// NewTemplateRenderer parses the embedded template set.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl := template.New("").Funcs(template.FuncMap{
		"datetime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04")
		},
	})
	tmpl, err := tmpl.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

// Render executes the named template into a buffer first so a template error
// never produces a half-written page.
func (r *TemplateRenderer) Render(c *fiber.Ctx, status int, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return fmt.Errorf("rendering %q: %w", name, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}
