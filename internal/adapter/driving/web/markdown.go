package web

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
	iconPolicy    *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()

	iconPolicy = bluemonday.NewPolicy()
	iconPolicy.AllowImages()
	iconPolicy.AllowDataURIImages()
	iconPolicy.AllowURLSchemes("http", "https")
	iconPolicy.AllowRelativeURLs(false)
}

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// SafeIconURL returns raw if it is an http(s) URL or an image data URI the
// icon policy would keep in an <img src>, and "" otherwise.
func SafeIconURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	tag := fmt.Sprintf(`<img src="%s">`, html.EscapeString(raw))
	if !strings.Contains(iconPolicy.Sanitize(tag), "src=") {
		return ""
	}
	return raw
}
