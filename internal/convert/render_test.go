package convert

import (
	"strings"
	"testing"
)

func TestRenderHeadings(t *testing.T) {
	blocks := []Block{
		Heading(1, []Span{{Text: "A"}}),
		Heading(2, []Span{{Text: "B"}}),
		Heading(3, []Span{{Text: "C"}}),
	}
	out := BlocksToMarkdown(blocks)
	for _, want := range []string{"# A\n", "## B\n", "### C\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderNumberedItemsAlwaysOne(t *testing.T) {
	blocks := []Block{
		{Kind: KindNumberedItem, Spans: []Span{{Text: "first"}}},
		{Kind: KindNumberedItem, Spans: []Span{{Text: "second"}}},
		{Kind: KindNumberedItem, Spans: []Span{{Text: "third"}}},
	}
	out := BlocksToMarkdown(blocks)
	if out != "1. first\n1. second\n1. third\n" {
		t.Errorf("numbered list rendering = %q", out)
	}
}

func TestRenderListSpacing(t *testing.T) {
	blocks := []Block{
		{Kind: KindBulletItem, Spans: []Span{{Text: "a"}}},
		{Kind: KindBulletItem, Spans: []Span{{Text: "b"}}},
		{Kind: KindParagraph, Spans: []Span{{Text: "p"}}},
	}
	out := BlocksToMarkdown(blocks)
	// List items stay contiguous; the paragraph gets a trailing blank line.
	if out != "- a\n- b\np\n\n" {
		t.Errorf("rendering = %q", out)
	}
}

func TestRenderCodeBlock(t *testing.T) {
	blocks := []Block{{Kind: KindCode, RawText: "x := 1\ny := 2", Language: "go"}}
	out := BlocksToMarkdown(blocks)
	if out != "```go\nx := 1\ny := 2\n```\n\n" {
		t.Errorf("code rendering = %q", out)
	}
}

func TestRenderQuoteMultiline(t *testing.T) {
	blocks := []Block{{Kind: KindQuote, Spans: []Span{{Text: "one\ntwo"}}}}
	out := BlocksToMarkdown(blocks)
	if out != "> one\n> two\n\n" {
		t.Errorf("quote rendering = %q", out)
	}
}

func TestRenderCallout(t *testing.T) {
	blocks := []Block{{Kind: KindCallout, Emoji: "⚠️", Spans: []Span{{Text: "careful"}}}}
	out := BlocksToMarkdown(blocks)
	if out != "::: callout ⚠️\ncareful\n:::\n\n" {
		t.Errorf("callout rendering = %q", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	table := Block{
		Kind:        KindTable,
		ColumnCount: 3,
		Rows: []TableRow{
			{Cells: [][]Span{{{Text: "a"}}, {{Text: "b"}}, {{Text: "c"}}}},
			{Cells: [][]Span{{{Text: "only"}}}},
		},
	}
	out := BlocksToMarkdown([]Block{table})
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if got := strings.Count(line, "|"); got != 4 {
			t.Errorf("row %q has %d pipes, want 4", line, got)
		}
	}
}

func TestRenderTableEscapesPipes(t *testing.T) {
	table := Block{
		Kind:        KindTable,
		ColumnCount: 1,
		Rows: []TableRow{
			{Cells: [][]Span{{{Text: "a|b"}}}},
		},
	}
	out := BlocksToMarkdown([]Block{table})
	if !strings.Contains(out, `a\|b`) {
		t.Errorf("pipe not escaped in cell: %q", out)
	}
}

func TestRenderNestedChildrenIndent(t *testing.T) {
	blocks := []Block{
		{
			Kind:  KindBulletItem,
			Spans: []Span{{Text: "parent"}},
			Children: []Block{
				{
					Kind:  KindBulletItem,
					Spans: []Span{{Text: "child"}},
					Children: []Block{
						{Kind: KindBulletItem, Spans: []Span{{Text: "grandchild"}}},
					},
				},
			},
		},
	}
	out := BlocksToMarkdown(blocks)
	if !strings.Contains(out, "\n    - child\n") {
		t.Errorf("child not indented four spaces:\n%q", out)
	}
	if !strings.Contains(out, "\n        - grandchild\n") {
		t.Errorf("grandchild not indented eight spaces:\n%q", out)
	}
}

func TestRenderDividerAndTaskItems(t *testing.T) {
	blocks := []Block{
		{Kind: KindTaskItem, Spans: []Span{{Text: "open"}}},
		{Kind: KindTaskItem, Spans: []Span{{Text: "done"}}, Checked: true},
		{Kind: KindDivider},
	}
	out := BlocksToMarkdown(blocks)
	if out != "- [ ] open\n- [x] done\n---\n\n" {
		t.Errorf("rendering = %q", out)
	}
}
