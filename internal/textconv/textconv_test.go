package textconv

import (
	"strings"
	"testing"
)

func TestToPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"paragraph", "<p>Hello</p>", "Hello"},
		{"heading then paragraph", "<h1>Title</h1><p>Body text.</p>", "Title\nBody text."},
		{"list", "<ul><li>One</li><li>Two</li></ul>", "- One\n- Two"},
		{"ordered list", "<ol><li>First</li><li>Second</li></ol>", "- First\n- Second"},
		{"two paragraphs", "<p>A</p><p>B</p>", "A\n\nB"},
		{"blank runs collapse", "<p>A</p><br><br><br><p>B</p>", "A\n\nB"},
		{"whitespace-only text dropped", "<p>A</p>\n   \n\t<p>B</p>", "A\n\nB"},
		{"entities decoded", "<p>Fish &amp; Chips</p>", "Fish & Chips"},
		{"inline text keeps spacing", "<p>a <b>bold</b> word</p>", "a bold word"},
		{"self-closing br", "Line one<br/>Line two", "Line one\nLine two"},
		{"unknown tags ignored", "<foo>text</foo><bar/>", "text"},
		{"unclosed tags", "<p>Unclosed <em>emphasis", "Unclosed emphasis"},
		{"div end adds newline", "<div>One</div><div>Two</div>", "One\nTwo"},
		{"no tags", "just plain text", "just plain text"},
		{"stray end tags", "</ul></ol>text</li>", "text"},
		{"markup inside textarea parsed", "<textarea><p>in</p></textarea>", "in"},
		{"markup inside title parsed", "<title><b>T</b></title><p>Body</p>", "T\nBody"},
		{"markup inside xmp parsed", "<xmp><li>item</li></xmp>", "- item"},
		{"self-closing textarea", "<textarea/><p>after</p>", "after"},
		{"script stays raw", "<script><p>x</p></script>", "<p>x</p>"},
		{
			"appstream description",
			"\n<h1>Hello World</h1>\n<p>This is a paragraph.</p>\n<ul>\n    <li>Item 1</li>\n    <li>Item 2</li>\n</ul>\n",
			"Hello World\nThis is a paragraph.\n- Item 1\n- Item 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToPlainText(tt.in); got != tt.want {
				t.Errorf("ToPlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToPlainTextNoRepeatedBlankLines(t *testing.T) {
	inputs := []string{
		"<p>A</p><p></p><p></p><p>B</p>",
		"<h1>T</h1><br><br><h2>S</h2><p>x</p><ul><li>a</li></ul><p>y</p>",
		"<p>one</p>\n\n\n<p>two</p>\n \n \n<p>three</p>",
	}
	for _, in := range inputs {
		out := ToPlainText(in)
		if strings.Contains(out, "\n\n\n") {
			t.Errorf("ToPlainText(%q) = %q, contains more than one blank line", in, out)
		}
	}
}

func TestToPlainTextIdempotentOnPlainText(t *testing.T) {
	for _, in := range []string{"Hello world", "  padded text  ", "line one\nline two"} {
		once := ToPlainText(in)
		twice := ToPlainText(once)
		if once != twice {
			t.Errorf("ToPlainText not idempotent for %q: %q then %q", in, once, twice)
		}
		if once != strings.TrimSpace(in) {
			t.Errorf("ToPlainText(%q) = %q, want %q", in, once, strings.TrimSpace(in))
		}
	}
}

func TestExtractorRawKeepsUntrimmedRuns(t *testing.T) {
	var e Extractor
	e.Feed("<li>  spaced  </li>")
	if got, want := e.Raw(), "-   spaced  \n"; got != want {
		t.Errorf("Raw() = %q, want %q", got, want)
	}
}

func TestExtractorListDepth(t *testing.T) {
	var e Extractor
	e.Feed("<ul><li>a</li><li>b</li>")
	if got := e.ListDepth(); got != 2 {
		t.Fatalf("ListDepth() after two items = %d, want 2", got)
	}
	e.Feed("</ul>")
	if got := e.ListDepth(); got != 1 {
		t.Errorf("ListDepth() after closing list = %d, want 1", got)
	}
	e.Feed("</ol></ul></ul>")
	if got := e.ListDepth(); got != 0 {
		t.Errorf("ListDepth() = %d, want 0 (never negative)", got)
	}
}

func TestExtractorNestedListsDoNotIndent(t *testing.T) {
	got := ToPlainText("<ul><li>outer<ul><li>inner</li></ul></li></ul>")
	want := "- outer- inner"
	if got != want {
		t.Errorf("ToPlainText nested = %q, want %q", got, want)
	}
}

func TestExtractorReset(t *testing.T) {
	var e Extractor
	e.Feed("<ul><li>a</li>")
	e.Reset()
	if e.ListDepth() != 0 || e.Text() != "" {
		t.Errorf("after Reset: depth=%d text=%q", e.ListDepth(), e.Text())
	}
}
