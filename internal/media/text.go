package media

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var spaceRun = regexp.MustCompile(`[ \t]+`)
var blankLines = regexp.MustCompile(`\n{3,}`)

// PlainText strips HTML markup from a catalog description. Block elements
// become line breaks. Text without markup is returned trimmed.
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsAny(s, "<&") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, li, div, h1, h2, h3, h4").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	text := doc.Text()
	text = spaceRun.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
