// Package textconv renders AppStream-style markup descriptions as plain text.
package textconv

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var blankRun = regexp.MustCompile(`\n\s*\n`)

// Extractor accumulates plain-text fragments from markup tokens. The zero
// value is ready to use. An Extractor is not safe for concurrent use.
type Extractor struct {
	parts     []string
	listDepth int
}

// Feed tokenizes a markup fragment and appends its text to the accumulator.
// Malformed markup never fails; unknown tags are ignored.
func (e *Extractor) Feed(markup string) {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF, or a read error from a strings.Reader which cannot happen
			return
		case html.StartTagToken:
			name, _ := z.TagName()
			// Only script and style hold raw text; markup inside
			// textarea, title and the like is still parsed.
			if tag := string(name); tag != "script" && tag != "style" {
				z.NextIsNotRawText()
			}
			e.startTag(string(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			e.endTag(string(name))
		case html.SelfClosingTagToken:
			z.NextIsNotRawText()
			name, _ := z.TagName()
			e.startTag(string(name))
			e.endTag(string(name))
		case html.TextToken:
			e.text(string(z.Text()))
		}
	}
}

func (e *Extractor) startTag(tag string) {
	switch tag {
	case "p", "br", "h1", "h2", "h3", "h4", "h5", "h6":
		e.parts = append(e.parts, "\n")
	case "li":
		e.parts = append(e.parts, "- ")
		e.listDepth++
	}
}

func (e *Extractor) endTag(tag string) {
	switch tag {
	case "p", "div", "li":
		e.parts = append(e.parts, "\n")
	case "ul", "ol":
		// Depth is tracked for introspection only; it does not indent output.
		if e.listDepth > 0 {
			e.listDepth--
		}
	}
}

func (e *Extractor) text(data string) {
	if strings.TrimSpace(data) != "" {
		e.parts = append(e.parts, data)
	}
}

// ListDepth reports the current list nesting counter.
func (e *Extractor) ListDepth() int {
	return e.listDepth
}

// Raw returns the accumulated fragments joined, before blank-line cleanup.
func (e *Extractor) Raw() string {
	return strings.Join(e.parts, "")
}

// Text returns the accumulated text with runs of blank lines collapsed to a
// single blank line and surrounding whitespace trimmed.
func (e *Extractor) Text() string {
	return strings.TrimSpace(blankRun.ReplaceAllString(e.Raw(), "\n\n"))
}

// Reset clears the accumulator so the Extractor can be reused.
func (e *Extractor) Reset() {
	e.parts = e.parts[:0]
	e.listDepth = 0
}

// ToPlainText converts a markup fragment to plain text. Block-level elements
// become line breaks and list items are prefixed with "- ".
func ToPlainText(markup string) string {
	var e Extractor
	e.Feed(markup)
	return e.Text()
}
