package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDeduplicator verifies URL, path, and slug tracking.
func TestDeduplicator(t *testing.T) {
	d := NewDeduplicator()

	assert.False(t, d.SeenURL("https://roachag.com/Resources/A"))
	assert.False(t, d.SeenPath("A"))
	assert.False(t, d.SeenSlug("post-a"))

	d.Add("https://roachag.com/Resources/A", "A", "post-a")

	assert.True(t, d.SeenURL("https://roachag.com/Resources/A"))
	assert.True(t, d.SeenPath("A"))
	assert.True(t, d.SeenSlug("post-a"))
	assert.False(t, d.SeenURL("https://roachag.com/Resources/B"))
	assert.False(t, d.SeenPath("B"))
	assert.False(t, d.SeenSlug("post-b"))
}

// TestDeduplicator_EmptyKeys verifies empty path and title slugs never
// collide.
func TestDeduplicator_EmptyKeys(t *testing.T) {
	d := NewDeduplicator()

	d.Add("https://roachag.com/Resources/A", "", "")

	assert.False(t, d.SeenPath(""), "empty path slug is not an identity")
	assert.False(t, d.SeenSlug(""), "empty title slug is not an identity")
}
