package convert

import (
	"testing"
)

func TestResolveSpansPlain(t *testing.T) {
	spans := resolveSpans("just some plain text")
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Text != "just some plain text" || !spans[0].Plain() {
		t.Errorf("expected one plain span, got %+v", spans[0])
	}
}

func TestResolveSpansFormatting(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Span
	}{
		{
			name:  "bold",
			input: "a **b** c",
			want: []Span{
				{Text: "a "},
				{Text: "b", Bold: true},
				{Text: " c"},
			},
		},
		{
			name:  "italic",
			input: "a *b* c",
			want: []Span{
				{Text: "a "},
				{Text: "b", Italic: true},
				{Text: " c"},
			},
		},
		{
			name:  "strikethrough",
			input: "~~gone~~ kept",
			want: []Span{
				{Text: "gone", Strikethrough: true},
				{Text: " kept"},
			},
		},
		{
			name:  "inline code",
			input: "run `make` now",
			want: []Span{
				{Text: "run "},
				{Text: "make", Code: true},
				{Text: " now"},
			},
		},
		{
			name:  "link",
			input: "see [docs](https://example.com) here",
			want: []Span{
				{Text: "see "},
				{Text: "docs", Link: "https://example.com"},
				{Text: " here"},
			},
		},
		{
			name:  "italic inside bold is subsumed",
			input: "**bold *inner* text**",
			want: []Span{
				{Text: "bold *inner* text", Bold: true},
			},
		},
		{
			name:  "adjacent matches emit no fill span",
			input: "**a**`b`",
			want: []Span{
				{Text: "a", Bold: true},
				{Text: "b", Code: true},
			},
		},
		{
			name:  "unclosed bold degrades to literal text",
			input: "**not closed",
			want: []Span{
				{Text: "**not closed"},
			},
		},
		{
			name:  "multiple kinds in order",
			input: "*i* then **b** then ~~s~~",
			want: []Span{
				{Text: "i", Italic: true},
				{Text: " then "},
				{Text: "b", Bold: true},
				{Text: " then "},
				{Text: "s", Strikethrough: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveSpans(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("resolveSpans(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("span %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// With no markers present the concatenated span texts must be the exact
// input line.
func TestResolveSpansCoverage(t *testing.T) {
	inputs := []string{
		"",
		"plain line",
		"pipes | and , punctuation ; everywhere",
		"half-open ** and stray ` tick",
		"tabs\tand  double  spaces",
	}
	for _, input := range inputs {
		var joined string
		for _, s := range resolveSpans(input) {
			joined += s.Text
		}
		if joined != input {
			t.Errorf("span concatenation %q does not reproduce input %q", joined, input)
		}
	}
}

func TestSpanMarkup(t *testing.T) {
	tests := []struct {
		name string
		span Span
		want string
	}{
		{"plain", Span{Text: "x"}, "x"},
		{"bold", Span{Text: "x", Bold: true}, "**x**"},
		{"italic", Span{Text: "x", Italic: true}, "*x*"},
		{"strikethrough", Span{Text: "x", Strikethrough: true}, "~~x~~"},
		{"code", Span{Text: "x", Code: true}, "`x`"},
		{"underline approximated with emphasis", Span{Text: "x", Underline: true}, "_x_"},
		{"link", Span{Text: "x", Link: "https://e.com"}, "[x](https://e.com)"},
		{"bold link", Span{Text: "x", Bold: true, Link: "https://e.com"}, "[**x**](https://e.com)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spanMarkup(tt.span); got != tt.want {
				t.Errorf("spanMarkup = %q, want %q", got, tt.want)
			}
		})
	}
}
