package server

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/render"
	"quill/internal/repository"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret-0123456789abcdef0123456789abcdef"

// setupTestServer wires a Server against an in-memory SQLite database and
// returns the Fiber app for request-level tests.
func setupTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Port:      "0",
		JWTSecret: testJWTSecret,
		Env:       "test",
		MediaRoot: t.TempDir(),
	}
	middleware.InitAuth(cfg)

	renderer, err := render.NewTemplateRenderer()
	require.NoError(t, err)

	// Built by hand rather than through NewServerWithDeps so tests do not
	// re-register Prometheus collectors on the default registry.
	srv := &Server{
		config:       cfg,
		db:           db,
		renderer:     renderer,
		userRepo:     repository.NewUserRepository(db),
		postRepo:     repository.NewPostRepository(db),
		commentRepo:  repository.NewCommentRepository(db),
		categoryRepo: repository.NewCategoryRepository(db),
		locationRepo: repository.NewLocationRepository(db),
		images:       service.NewImageService(cfg),
	}

	app := fiber.New()
	app.Use(middleware.CurrentUser())
	srv.SetupRoutes(app)
	return srv, app, db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("Sup3r-Secret-Pass!"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB, slug string, published bool) *models.Category {
	t.Helper()
	category := &models.Category{
		Title:       strings.ToUpper(slug[:1]) + slug[1:],
		Slug:        slug,
		Description: "About " + slug,
		IsPublished: published,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.User, category *models.Category, overrides ...func(*models.Post)) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       "Post by " + author.Username,
		Text:        "Some text",
		PubDate:     time.Now().UTC().Add(-time.Hour),
		AuthorID:    author.ID,
		IsPublished: true,
	}
	if category != nil {
		id := category.ID
		post.CategoryID = &id
	}
	for _, override := range overrides {
		override(post)
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func createTestComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, text string) *models.Comment {
	t.Helper()
	comment := &models.Comment{Text: text, PostID: post.ID, AuthorID: author.ID}
	require.NoError(t, db.Create(comment).Error)
	return comment
}

// sessionCookieFor mints a session token the way the login handler does.
func sessionCookieFor(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(user.ID), 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookie, Value: token}
}

func getPage(t *testing.T, app *fiber.App, path string, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values, cookie *http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestLivenessCheck(t *testing.T) {
	_, app, _ := setupTestServer(t)
	resp, _ := getPage(t, app, "/health/live", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
