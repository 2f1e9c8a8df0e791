package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Category slugs are URL path segments; the charset matches what the post
// routes can address (latin letters, digits, hyphen, underscore).
var categorySlugRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

var reservedCategorySlugs = map[string]struct{}{
	"posts":        {},
	"profile":      {},
	"edit_profile": {},
	"auth":         {},
	"category":     {},
	"health":       {},
	"metrics":      {},
	"media":        {},
}

// ValidateCategorySlug validates category slug format and reserved names.
func ValidateCategorySlug(slug string) error {
	if !categorySlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 1-64 characters and contain only letters, digits, hyphens, and underscores")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}

	if _, exists := reservedCategorySlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}

	return nil
}
