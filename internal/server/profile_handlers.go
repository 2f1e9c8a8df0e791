package server

import (
	"strings"

	"quill/internal/middleware"
	"quill/internal/repository"
	"quill/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Profile renders a user's page with their posts. The owner sees all of their
// own posts, hidden ones included; every other visitor gets the public
// predicate applied on top of the author filter.
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	username := c.Params("username")

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return s.renderNotFound(c, "")
		}
		middleware.Logger.ErrorContext(ctx, "profile load failed", "username", username, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	uid, _ := currentUserID(c)
	isOwner := uid == user.ID

	page := parsePage(c)
	posts, total, err := s.postRepo.List(ctx, repository.PostQuery{
		PublicOnly: !isOwner,
		Annotate:   true,
		AuthorID:   user.ID,
		Page:       page,
		PageSize:   PageSize,
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "profile listing failed", "username", username, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	return s.renderer.Render(c, fiber.StatusOK, "profile", ProfilePage{
		Profile:   user,
		IsOwner:   isOwner,
		Posts:     posts,
		Paginator: newPaginator(page, total),
	})
}

// EditProfileForm renders the profile form for the acting user. The target is
// always the session user; the URL names nobody.
func (s *Server) EditProfileForm(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user, err := s.userRepo.GetByID(ctx, mustUserID(c))
	if err != nil {
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	return s.renderer.Render(c, fiber.StatusOK, "profile_form", ProfileFormPage{
		Form: ProfileFormData{
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Bio:       user.Bio,
		},
		Saved: c.Query("saved") == "1",
	})
}

// EditProfile applies the submitted form to the acting user's account and
// returns to the same form with a confirmation.
func (s *Server) EditProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user, err := s.userRepo.GetByID(ctx, mustUserID(c))
	if err != nil {
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}

	form := ProfileFormData{
		Username:  strings.TrimSpace(c.FormValue("username")),
		Email:     strings.ToLower(strings.TrimSpace(c.FormValue("email"))),
		FirstName: strings.TrimSpace(c.FormValue("first_name")),
		LastName:  strings.TrimSpace(c.FormValue("last_name")),
		Bio:       strings.TrimSpace(c.FormValue("bio")),
		Errors:    map[string]string{},
	}

	if err := validation.ValidateUsername(form.Username); err != nil {
		form.Errors["username"] = err.Error()
	} else if form.Username != user.Username {
		if _, lookupErr := s.userRepo.GetByUsername(ctx, form.Username); lookupErr == nil {
			form.Errors["username"] = "Username is already taken"
		} else if !isNotFound(lookupErr) {
			return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
		}
	}

	if err := validation.ValidateEmail(form.Email); err != nil {
		form.Errors["email"] = err.Error()
	} else if form.Email != user.Email {
		existing, lookupErr := s.userRepo.GetByEmail(ctx, form.Email)
		if lookupErr != nil {
			return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
		}
		if existing != nil {
			form.Errors["email"] = "An account with this email already exists"
		}
	}

	if len(form.Errors) > 0 {
		return s.renderer.Render(c, fiber.StatusBadRequest, "profile_form", ProfileFormPage{Form: form})
	}

	user.Username = form.Username
	user.Email = form.Email
	user.FirstName = form.FirstName
	user.LastName = form.LastName
	user.Bio = form.Bio

	if err := s.userRepo.Update(ctx, user); err != nil {
		middleware.Logger.ErrorContext(ctx, "profile update failed", "user_id", user.ID, "error", err)
		return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	return seeOther(c, editProfileURL()+"?saved=1")
}
