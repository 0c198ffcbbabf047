package web

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	vm "github.com/ericfisherdev/ytsentiment/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/ytsentiment/internal/application"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
}

// welcomeText is shown until the first analysis of a browser session.
const welcomeText = `Paste a **YouTube video URL** or the 11-character video id and press *Analyze*.
Public comments and replies are fetched, scored with VADER and labeled
Positive (score >= 0.05), Negative (score <= -0.05) or Neutral.`

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

func infoNotice(md string) vm.NoticeViewModel {
	return vm.NoticeViewModel{Level: "info", HTML: RenderMarkdown(md)}
}

func errorNotice(md string) vm.NoticeViewModel {
	return vm.NoticeViewModel{Level: "error", HTML: RenderMarkdown(md)}
}

// fetchErrorMessage turns a pipeline error into the markdown shown to the user.
func fetchErrorMessage(err error) string {
	_, msg := application.DescribeFetchError(err)
	return "**Analysis failed.** " + msg
}
