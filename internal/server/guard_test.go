package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnedBy(t *testing.T) {
	d := ownedBy(1, 1)
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Reason)

	d = ownedBy(1, 2)
	assert.False(t, d.Allowed)
	assert.NotEmpty(t, d.Reason)

	// An anonymous actor never owns anything.
	d = ownedBy(0, 0)
	assert.False(t, d.Allowed)
}
