package markdown_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowblog/internal/pkg/markdown"
)

func TestRenderer_Render(t *testing.T) {
	r, err := markdown.NewRenderer(8)
	require.NoError(t, err)

	t.Run("renders gfm", func(t *testing.T) {
		out, err := r.Render("# Title\n\n~~gone~~ and **bold**")
		require.NoError(t, err)
		assert.Contains(t, string(out), "<h1")
		assert.Contains(t, string(out), "<del>gone</del>")
		assert.Contains(t, string(out), "<strong>bold</strong>")
	})

	t.Run("strips scripts", func(t *testing.T) {
		out, err := r.Render("hello <script>alert(1)</script>")
		require.NoError(t, err)
		assert.NotContains(t, string(out), "<script")
	})

	t.Run("hardens external links", func(t *testing.T) {
		out, err := r.Render("[x](https://example.com)")
		require.NoError(t, err)
		assert.Contains(t, string(out), `target="_blank"`)
		assert.Contains(t, string(out), "noreferrer")
	})
}

func TestRenderer_RenderCached(t *testing.T) {
	r, err := markdown.NewRenderer(2)
	require.NoError(t, err)

	first, err := r.RenderCached("post:1", "*one*")
	require.NoError(t, err)

	again, err := r.RenderCached("post:1", "*changed*")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	r.Forget("post:1")
	fresh, err := r.RenderCached("post:1", "*changed*")
	require.NoError(t, err)
	assert.Contains(t, string(fresh), "changed")

	_, _ = r.RenderCached("post:2", "two")
	_, _ = r.RenderCached("post:3", "three")
	assert.Equal(t, 2, r.Len())
}

func TestRenderer_Excerpt(t *testing.T) {
	r, err := markdown.NewRenderer(0)
	require.NoError(t, err)

	assert.Equal(t, "Hello world & friends", r.Excerpt("# Hello\n\n**world** &amp; friends", 160))

	long := strings.Repeat("héllo ", 100)
	ex := r.Excerpt(long, 160)
	assert.LessOrEqual(t, utf8.RuneCountInString(ex), 160)
	assert.True(t, strings.HasPrefix(ex, "héllo héllo"))
}
