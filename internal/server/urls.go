package server

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// Redirect targets live here so each post-action destination is decided in
// exactly one place. Handlers never format paths inline.

func indexURL() string { return "/" }

func postDetailURL(postID uint) string {
	return fmt.Sprintf("/posts/%d/", postID)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func editProfileURL() string { return "/edit_profile/" }

func loginURL() string { return "/auth/login/" }

// seeOther issues the post-action redirect. 303 forces the follow-up request
// to be a GET regardless of the original method.
func seeOther(c *fiber.Ctx, location string) error {
	return c.Redirect(location, fiber.StatusSeeOther)
}
