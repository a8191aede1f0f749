package markdown

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

const DefaultCacheSize = 512

// Renderer turns post Markdown into sanitized HTML. Results are kept in an
// LRU keyed by the caller, so keys must change when the source does.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strict *bluemonday.Policy
	cache  *lru.Cache[string, template.HTML]
}

func NewRenderer(cacheSize int) (*Renderer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, template.HTML](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create render cache: %w", err)
	}

	policy := bluemonday.UGCPolicy()
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: policy,
		strict: bluemonday.StrictPolicy(),
		cache:  cache,
	}, nil
}

func (r *Renderer) Render(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// RenderCached renders source once per key.
func (r *Renderer) RenderCached(key, source string) (template.HTML, error) {
	if out, ok := r.cache.Get(key); ok {
		return out, nil
	}

	out, err := r.Render(source)
	if err != nil {
		return "", err
	}
	r.cache.Add(key, out)
	return out, nil
}

func (r *Renderer) Forget(key string) {
	r.cache.Remove(key)
}

func (r *Renderer) Len() int {
	return r.cache.Len()
}

// Excerpt returns the first max runes of the rendered text with markup
// removed and whitespace collapsed.
func (r *Renderer) Excerpt(source string, max int) string {
	rendered, err := r.Render(source)
	if err != nil {
		rendered = template.HTML(source)
	}

	text := html.UnescapeString(r.strict.Sanitize(string(rendered)))
	text = strings.Join(strings.Fields(text), " ")

	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max]))
}
