// Package pagetext converts raw page HTML into readable markdown for
// indexing. The pipeline strips non-content markup (scripts, styles,
// embedded media), converts what remains to markdown, and normalizes
// whitespace. It is a pure function of its input: no I/O, no state.
package pagetext

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Pre-parse strips. Script and style bodies routinely contain markup-like
// text that confuses the parser, so they go before the DOM pass.
var (
	scriptPattern    = regexp.MustCompile(`(?is)<[ ]*script.*?/[ ]*script[ ]*>`)
	stylePattern     = regexp.MustCompile(`(?is)<[ ]*style.*?/[ ]*style[ ]*>`)
	metaPattern      = regexp.MustCompile(`(?is)<[ ]*meta.*?>`)
	commentPattern   = regexp.MustCompile(`(?is)<[ ]*!--.*?--[ ]*>`)
	linkPattern      = regexp.MustCompile(`(?is)<[ ]*link.*?>`)
	svgPattern       = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	base64ImgPattern = regexp.MustCompile(`<img[^>]+src="data:image/[^;]+;base64,[^"]+"[^>]*>`)
	blankRunPattern  = regexp.MustCompile(`\n{3,}`)
)

// Elements removed from the DOM: media and embed containers whose content
// is useless as searchable text, plus forms.
var strippedElements = map[atom.Atom]bool{
	atom.Canvas:  true,
	atom.Img:     true,
	atom.Picture: true,
	atom.Audio:   true,
	atom.Video:   true,
	atom.Iframe:  true,
	atom.Embed:   true,
	atom.Object:  true,
	atom.Param:   true,
	atom.Track:   true,
	atom.Map:     true,
	atom.Area:    true,
	atom.Source:  true,
	atom.Form:    true,
}

// The converter is safe for concurrent reuse; build it once.
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// Convert turns raw HTML into markdown text. ok is false when the page has
// no usable text content (empty input, unparseable markup, or markup that
// reduces to whitespace); callers record that outcome explicitly so the
// page is not refetched.
func Convert(rawHTML string) (markdown string, ok bool) {
	cleaned := stripPatterns(rawHTML)
	if strings.TrimSpace(cleaned) == "" {
		return "", false
	}

	cleaned, err := stripElements(cleaned)
	if err != nil || strings.TrimSpace(cleaned) == "" {
		return "", false
	}

	md, err := mdConverter.ConvertString(cleaned)
	if err != nil {
		return "", false
	}

	md = normalizeWhitespace(md)
	if md == "" {
		return "", false
	}
	return md, true
}

// stripPatterns removes markup that must not reach the DOM parser.
func stripPatterns(s string) string {
	s = scriptPattern.ReplaceAllString(s, "")
	s = stylePattern.ReplaceAllString(s, "")
	s = metaPattern.ReplaceAllString(s, "")
	s = commentPattern.ReplaceAllString(s, "")
	s = linkPattern.ReplaceAllString(s, "")
	s = svgPattern.ReplaceAllString(s, "")
	s = base64ImgPattern.ReplaceAllString(s, "")
	return s
}

// stripElements parses the HTML and removes every element kind in
// strippedElements, subtree included.
func stripElements(s string) (string, error) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", err
	}
	removeStripped(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func removeStripped(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && strippedElements[c.DataAtom] {
			n.RemoveChild(c)
		} else {
			removeStripped(c)
		}
		c = next
	}
}

// normalizeWhitespace collapses runs of 3+ newlines to exactly 2,
// right-trims every line, and trims the result.
func normalizeWhitespace(s string) string {
	s = blankRunPattern.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
