package inbox

import (
	"errors"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ErrEmptyReply is returned for a reply with no visible text.
var ErrEmptyReply = errors.New("empty reply")

// NoContent is shown in place of an empty message body.
const NoContent = "No content"

// BodyMarkdown converts an HTML message body to markdown for the reader
// view. When conversion fails the plain text of the body is used.
func BodyMarkdown(body string) string {
	if strings.TrimSpace(body) == "" {
		return NoContent
	}
	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return PlainText(body)
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return NoContent
	}
	return md
}

// PlainText returns the visible text of an HTML fragment with runs of
// whitespace collapsed.
func PlainText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return strings.TrimSpace(body)
	}
	doc.Find("script, style, head").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// IsBlankHTML reports whether an HTML fragment has no visible text once
// tags are stripped.
func IsBlankHTML(body string) bool {
	return PlainText(body) == ""
}

// ReplyHTML renders reply text written as markdown to the HTML body the
// backend sends. Single newlines become line breaks.
func ReplyHTML(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyReply
	}
	extensions := parser.CommonExtensions | parser.HardLineBreak | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(strings.ReplaceAll(text, "\r\n", "\n")))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	out := strings.TrimSpace(string(markdown.Render(doc, renderer)))
	if IsBlankHTML(out) {
		return "", ErrEmptyReply
	}
	return out, nil
}
