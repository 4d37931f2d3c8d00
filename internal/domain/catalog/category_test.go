package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	t.Run("derives slug from name", func(t *testing.T) {
		c, err := NewCategory("Home & Garden", "", "For the house")
		require.NoError(t, err)
		assert.Equal(t, "home-garden", c.Slug)
		assert.Equal(t, "For the house", c.Description)
	})

	t.Run("normalizes explicit slug", func(t *testing.T) {
		c, err := NewCategory("Sports", "Sports Outdoors", "")
		require.NoError(t, err)
		assert.Equal(t, "sports-outdoors", c.Slug)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCategory("  ", "", "")
		assert.Error(t, err)
	})

	t.Run("rejects name without slug characters", func(t *testing.T) {
		_, err := NewCategory("***", "", "")
		assert.Error(t, err)
	})
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Electronics":        "electronics",
		"Beauty & Health":    "beauty-health",
		"  Café  Crème ":     "cafe-creme",
		"Books--and--Things": "books-and-things",
		"USB-C 3.1":          "usb-c-3-1",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
