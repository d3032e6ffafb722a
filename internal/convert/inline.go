package convert

import (
	"encoding/json"
	"regexp"
	"sort"
)

// Span is a run of text carrying zero or more formatting annotations and
// an optional hyperlink target.
type Span struct {
	Text          string
	Bold          bool
	Italic        bool
	Strikethrough bool
	Code          bool
	Underline     bool
	Link          string
}

// Plain reports whether the span carries no formatting at all.
func (s Span) Plain() bool {
	return !s.Bold && !s.Italic && !s.Strikethrough && !s.Code && !s.Underline && s.Link == ""
}

type spanAnnotations struct {
	Bold          bool `json:"bold,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
	Code          bool `json:"code,omitempty"`
	Underline     bool `json:"underline,omitempty"`
}

type spanLink struct {
	URL string `json:"url"`
}

type spanText struct {
	Content string    `json:"content"`
	Link    *spanLink `json:"link,omitempty"`
}

type spanWire struct {
	Type        string           `json:"type"`
	Text        spanText         `json:"text"`
	Annotations *spanAnnotations `json:"annotations,omitempty"`
}

// MarshalJSON produces the Notion rich text shape:
// {"type":"text","text":{"content":...,"link":{...}?},"annotations":{...}?}.
func (s Span) MarshalJSON() ([]byte, error) {
	wire := spanWire{Type: "text", Text: spanText{Content: s.Text}}
	if s.Link != "" {
		wire.Text.Link = &spanLink{URL: s.Link}
	}
	if !s.Bold && !s.Italic && !s.Strikethrough && !s.Code && !s.Underline {
		return json.Marshal(wire)
	}
	wire.Annotations = &spanAnnotations{
		Bold:          s.Bold,
		Italic:        s.Italic,
		Strikethrough: s.Strikethrough,
		Code:          s.Code,
		Underline:     s.Underline,
	}
	return json.Marshal(wire)
}

// UnmarshalJSON accepts the rich text shape, tolerating absent annotations.
func (s *Span) UnmarshalJSON(data []byte) error {
	var wire spanWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	span := Span{Text: wire.Text.Content}
	if wire.Text.Link != nil {
		span.Link = wire.Text.Link.URL
	}
	if wire.Annotations != nil {
		span.Bold = wire.Annotations.Bold
		span.Italic = wire.Annotations.Italic
		span.Strikethrough = wire.Annotations.Strikethrough
		span.Code = wire.Annotations.Code
		span.Underline = wire.Annotations.Underline
	}
	*s = span
	return nil
}

// Inline marker patterns, matched independently over the whole line.
var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*([^*]+)\*`)
	strikePattern = regexp.MustCompile(`~~(.+?)~~`)
	codePattern   = regexp.MustCompile("`([^`]+)`")
	linkPattern   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

type inlineMatch struct {
	start int
	end   int
	span  Span
}

// resolveSpans tokenizes one line into ordered, non-overlapping spans.
// Malformed markers never match and fall through as literal text - an
// unclosed ** is just two asterisks in a plain span.
func resolveSpans(line string) []Span {
	var matches []inlineMatch

	boldRanges := boldPattern.FindAllStringSubmatchIndex(line, -1)
	for _, m := range boldRanges {
		matches = append(matches, inlineMatch{
			start: m[0],
			end:   m[1],
			span:  Span{Text: line[m[2]:m[3]], Bold: true},
		})
	}

	// Italic matches fully contained in a bold match would double-count
	// the emphasis; the bold annotation wins and the italic match is
	// dropped.
	for _, m := range italicPattern.FindAllStringSubmatchIndex(line, -1) {
		subsumed := false
		for _, b := range boldRanges {
			if m[0] >= b[0] && m[1] <= b[1] {
				subsumed = true
				break
			}
		}
		if subsumed {
			continue
		}
		matches = append(matches, inlineMatch{
			start: m[0],
			end:   m[1],
			span:  Span{Text: line[m[2]:m[3]], Italic: true},
		})
	}

	for _, m := range strikePattern.FindAllStringSubmatchIndex(line, -1) {
		matches = append(matches, inlineMatch{
			start: m[0],
			end:   m[1],
			span:  Span{Text: line[m[2]:m[3]], Strikethrough: true},
		})
	}

	for _, m := range codePattern.FindAllStringSubmatchIndex(line, -1) {
		matches = append(matches, inlineMatch{
			start: m[0],
			end:   m[1],
			span:  Span{Text: line[m[2]:m[3]], Code: true},
		})
	}

	for _, m := range linkPattern.FindAllStringSubmatchIndex(line, -1) {
		matches = append(matches, inlineMatch{
			start: m[0],
			end:   m[1],
			span:  Span{Text: line[m[2]:m[3]], Link: line[m[4]:m[5]]},
		})
	}

	if len(matches) == 0 {
		return []Span{{Text: line}}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].start < matches[j].start
	})

	var spans []Span
	cursor := 0
	for _, m := range matches {
		if m.start < cursor {
			// Overlap with an already-emitted match; keep the earlier one.
			continue
		}
		if m.start > cursor {
			spans = append(spans, Span{Text: line[cursor:m.start]})
		}
		spans = append(spans, m.span)
		cursor = m.end
	}
	if cursor < len(line) {
		spans = append(spans, Span{Text: line[cursor:]})
	}

	return spans
}

// spanMarkup re-applies markdown markers to a span's text. Nested
// bold+italic came through the resolver as a single annotation, so the
// output is a normalized re-markup rather than the original bytes.
func spanMarkup(s Span) string {
	text := s.Text
	if s.Bold {
		text = "**" + text + "**"
	}
	if s.Italic {
		text = "*" + text + "*"
	}
	if s.Strikethrough {
		text = "~~" + text + "~~"
	}
	if s.Code {
		text = "`" + text + "`"
	}
	if s.Underline {
		text = "_" + text + "_"
	}
	if s.Link != "" {
		text = "[" + text + "](" + s.Link + ")"
	}
	return text
}

// spansMarkup renders a span sequence back to one line of markdown.
func spansMarkup(spans []Span) string {
	var out string
	for _, s := range spans {
		out += spanMarkup(s)
	}
	return out
}
