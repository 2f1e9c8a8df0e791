package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCategorySlug(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		slug    string
		wantErr bool
	}{
		{"Valid", "travel", false},
		{"Valid With Digits", "summer2026", false},
		{"Valid With Underscore", "city_guides", false},
		{"Valid With Hyphen", "long-reads", false},
		{"Valid Mixed Case", "LongReads", false},
		{"Empty", "", true},
		{"Illegal Chars", "travel!", true},
		{"Spaces", "long reads", true},
		{"Leading Hyphen", "-travel", true},
		{"Trailing Hyphen", "travel-", true},
		{"Reserved", "posts", true},
		{"Reserved Profile", "profile", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCategorySlug(tt.slug)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
