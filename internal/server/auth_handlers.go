package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 7 * 24 * time.Hour

// SignupForm renders the registration page.
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return s.renderer.Render(c, fiber.StatusOK, "signup", AuthFormPage{})
}

// Signup registers a new account and signs the user in.
func (s *Server) Signup(c *fiber.Ctx) error {
	ctx := c.UserContext()
	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")

	page := AuthFormPage{Username: username, Email: email}

	if err := validation.ValidateUsername(username); err != nil {
		page.Error = err.Error()
		return s.renderer.Render(c, fiber.StatusBadRequest, "signup", page)
	}
	if err := validation.ValidateEmail(email); err != nil {
		page.Error = err.Error()
		return s.renderer.Render(c, fiber.StatusBadRequest, "signup", page)
	}
	if err := validation.ValidatePassword(password); err != nil {
		page.Error = err.Error()
		return s.renderer.Render(c, fiber.StatusBadRequest, "signup", page)
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		page.Error = "Username is already taken"
		return s.renderer.Render(c, fiber.StatusConflict, "signup", page)
	} else if !isNotFound(err) {
		middleware.Logger.ErrorContext(ctx, "signup username lookup failed", "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		middleware.Logger.ErrorContext(ctx, "signup email lookup failed", "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	} else if existing != nil {
		page.Error = "An account with this email already exists"
		return s.renderer.Render(c, fiber.StatusConflict, "signup", page)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		middleware.Logger.ErrorContext(ctx, "signup create failed", "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	if err := s.issueSession(c, user); err != nil {
		middleware.Logger.ErrorContext(ctx, "session issue failed", "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	return seeOther(c, profileURL(user.Username))
}

// LoginForm renders the login page.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return s.renderer.Render(c, fiber.StatusOK, "login", AuthFormPage{Next: c.Query("next")})
}

// Login authenticates by username and password. Failures are deliberately
// indistinct between unknown user and wrong password.
func (s *Server) Login(c *fiber.Ctx) error {
	ctx := c.UserContext()
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	page := AuthFormPage{Username: username, Next: c.Query("next")}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !isNotFound(err) {
			middleware.Logger.ErrorContext(ctx, "login lookup failed", "error", err)
			return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
		}
		page.Error = "Invalid username or password"
		return s.renderer.Render(c, fiber.StatusUnauthorized, "login", page)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		page.Error = "Invalid username or password"
		return s.renderer.Render(c, fiber.StatusUnauthorized, "login", page)
	}

	if err := s.issueSession(c, user); err != nil {
		middleware.Logger.ErrorContext(ctx, "session issue failed", "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	return seeOther(c, safeNext(c.Query("next")))
}

// Logout clears the session cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
	return seeOther(c, indexURL())
}

func (s *Server) issueSession(c *fiber.Ctx, user *models.User) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(sessionTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  now.Add(sessionTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Secure:   s.config.Env == "production",
		Path:     "/",
	})
	return nil
}

// safeNext only honors same-site relative redirect targets.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return indexURL()
}

func isNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeNotFound
}
