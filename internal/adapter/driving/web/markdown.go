package web

import (
	"bytes"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	// The usage notes are written in GitHub-flavored markdown.
	usageRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	usagePolicy = bluemonday.UGCPolicy()
)

// usageHTML is the embedded usage notes rendered once per process.
var usageHTML = sync.OnceValue(func() string {
	return RenderMarkdown(usageMarkdown)
})

// RenderMarkdown converts markdown such as the landing page usage notes into
// HTML that is safe to emit with templ.Raw. If goldmark fails, the source is
// sanitized as is.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var out bytes.Buffer
	if err := usageRenderer.Convert([]byte(src), &out); err != nil {
		return usagePolicy.Sanitize(src)
	}
	return usagePolicy.Sanitize(out.String())
}
