package convert

import (
	"regexp"
	"strings"
)

type scanMode int

const (
	modeNormal scanMode = iota
	modeCodeFence
	modeBlockquote
	modeCallout
	modeTable
)

var (
	numberedPattern  = regexp.MustCompile(`^\d+\. `)
	separatorPattern = regexp.MustCompile(`^:?-+:?$`)
)

const calloutOpen = "::: callout"

// scanner is the single-pass block scanner. Mode transitions happen only
// on line boundaries; the one permitted lookahead decides table
// termination and blockquote continuation across blank lines.
type scanner struct {
	blocks []Block

	mode scanMode

	// InCodeFence
	codeLines []string
	codeLang  string

	// InBlockquote
	quoteLines []string

	// InCallout
	calloutLines []string
	calloutEmoji string

	// InTable: raw cell text per accumulated row
	tableRows    [][]string
	tableHasHead bool
}

// MarkdownToBlocks converts markdown text into an ordered block sequence.
// It is a pure transform: no I/O, no shared state, safe for concurrent
// callers.
func MarkdownToBlocks(text string) []Block {
	s := &scanner{}
	lines := strings.Split(text, "\n")

	for i := 0; i < len(lines); i++ {
		var next string
		hasNext := i+1 < len(lines)
		if hasNext {
			next = lines[i+1]
		}

		switch s.mode {
		case modeCodeFence:
			s.scanCodeFenceLine(lines[i])
		case modeBlockquote:
			s.scanBlockquoteLine(lines[i], next, hasNext)
		case modeCallout:
			s.scanCalloutLine(lines[i])
		case modeTable:
			if isTableRow(lines[i]) {
				s.scanTableRow(lines[i])
			} else {
				s.flushTable()
				s.scanNormalLine(lines[i])
			}
		default:
			s.scanNormalLine(lines[i])
		}
	}

	// Whatever mode is still open at end of input flushes best-effort
	// instead of dropping its accumulated content.
	s.flushOpen()

	return s.blocks
}

func (s *scanner) scanNormalLine(line string) {
	indent := leadingSpaces(line)
	depth := indent / 4
	rest := line[indent:]
	trimmed := strings.TrimSpace(line)

	switch {
	case isTableRow(line):
		s.mode = modeTable
		s.scanTableRow(line)

	case strings.HasPrefix(trimmed, calloutOpen):
		s.mode = modeCallout
		s.calloutEmoji = strings.TrimSpace(strings.TrimPrefix(trimmed, calloutOpen))
		if s.calloutEmoji == "" {
			s.calloutEmoji = "💡"
		}

	case strings.HasPrefix(trimmed, "```"):
		s.mode = modeCodeFence
		s.codeLang = NormalizeLanguage(strings.TrimSpace(strings.TrimPrefix(trimmed, "```")))
		s.codeLines = nil

	case strings.HasPrefix(rest, "> "):
		s.mode = modeBlockquote
		s.quoteLines = []string{strings.TrimPrefix(rest, "> ")}

	case strings.HasPrefix(rest, "### "):
		s.emit(Block{Kind: KindHeading3, Spans: resolveSpans(rest[4:])}, depth)
	case strings.HasPrefix(rest, "## "):
		s.emit(Block{Kind: KindHeading2, Spans: resolveSpans(rest[3:])}, depth)
	case strings.HasPrefix(rest, "# "):
		s.emit(Block{Kind: KindHeading1, Spans: resolveSpans(rest[2:])}, depth)

	case trimmed == "---" || trimmed == "***" || trimmed == "___":
		s.emit(Block{Kind: KindDivider}, depth)

	case strings.HasPrefix(rest, "- [ ] "):
		s.emit(Block{Kind: KindTaskItem, Spans: resolveSpans(rest[6:])}, depth)
	case strings.HasPrefix(rest, "- [x] "):
		s.emit(Block{Kind: KindTaskItem, Spans: resolveSpans(rest[6:]), Checked: true}, depth)

	case strings.HasPrefix(rest, "- "):
		s.emit(Block{Kind: KindBulletItem, Spans: resolveSpans(rest[2:])}, depth)

	case numberedPattern.MatchString(rest):
		// The ordinal itself is discarded; render re-numbers from 1.
		loc := numberedPattern.FindStringIndex(rest)
		s.emit(Block{Kind: KindNumberedItem, Spans: resolveSpans(rest[loc[1]:])}, depth)

	case trimmed != "":
		s.emit(Block{Kind: KindParagraph, Spans: resolveSpans(rest)}, depth)

	default:
		// Blank lines only separate blocks.
	}
}

func (s *scanner) scanCodeFenceLine(line string) {
	if strings.HasPrefix(strings.TrimSpace(line), "```") {
		s.flushCodeFence()
		return
	}
	s.codeLines = append(s.codeLines, line)
}

func (s *scanner) scanBlockquoteLine(line, next string, hasNext bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "> "):
		s.quoteLines = append(s.quoteLines, strings.TrimPrefix(line, "> "))
	case trimmed == ">":
		s.quoteLines = append(s.quoteLines, "")
	case trimmed == "":
		// A blank line continues the quote only when the next line is
		// quoted again; otherwise it terminates the block.
		if hasNext && strings.HasPrefix(next, ">") {
			s.quoteLines = append(s.quoteLines, "")
			return
		}
		s.flushBlockquote()
	default:
		s.flushBlockquote()
		s.scanNormalLine(line)
	}
}

func (s *scanner) scanCalloutLine(line string) {
	if strings.TrimSpace(line) == ":::" {
		s.flushCallout()
		return
	}
	s.calloutLines = append(s.calloutLines, line)
}

func (s *scanner) scanTableRow(line string) {
	cells := splitTableCells(strings.TrimSpace(line))

	if len(s.tableRows) > 0 && isSeparatorRow(cells) {
		// The separator is consumed, marking the preceding row as header.
		s.tableHasHead = true
		return
	}
	s.tableRows = append(s.tableRows, cells)
}

// isTableRow reports whether a trimmed line both starts and ends with a
// pipe.
func isTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= 2 && strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

// splitTableCells splits a table row on unescaped pipes, unescaping \|
// back to a literal pipe in each cell.
func splitTableCells(row string) []string {
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")

	var cells []string
	var cell strings.Builder
	escaped := false
	for _, r := range row {
		switch {
		case escaped:
			if r != '|' {
				cell.WriteByte('\\')
			}
			cell.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteRune(r)
		}
	}
	if escaped {
		cell.WriteByte('\\')
	}
	cells = append(cells, strings.TrimSpace(cell.String()))
	return cells
}

func isSeparatorRow(cells []string) bool {
	sawDashes := false
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		if !separatorPattern.MatchString(cell) {
			return false
		}
		sawDashes = true
	}
	return sawDashes
}

func (s *scanner) flushCodeFence() {
	raw := strings.Join(s.codeLines, "\n")
	s.emit(Block{Kind: KindCode, RawText: raw, Language: s.codeLang}, 0)
	s.codeLines = nil
	s.codeLang = ""
	s.mode = modeNormal
}

func (s *scanner) flushBlockquote() {
	text := strings.TrimSpace(strings.Join(s.quoteLines, "\n"))
	s.emit(Block{Kind: KindQuote, Spans: resolveSpans(text)}, 0)
	s.quoteLines = nil
	s.mode = modeNormal
}

func (s *scanner) flushCallout() {
	text := strings.TrimSpace(strings.Join(s.calloutLines, "\n"))
	s.emit(Block{Kind: KindCallout, Spans: resolveSpans(text), Emoji: s.calloutEmoji}, 0)
	s.calloutLines = nil
	s.calloutEmoji = ""
	s.mode = modeNormal
}

func (s *scanner) flushTable() {
	defer func() {
		s.tableRows = nil
		s.tableHasHead = false
		s.mode = modeNormal
	}()

	if len(s.tableRows) == 0 {
		return
	}

	table := Block{
		Kind:         KindTable,
		ColumnCount:  len(s.tableRows[0]),
		HasHeaderRow: s.tableHasHead,
	}
	for _, cells := range s.tableRows {
		row := TableRow{}
		for _, cell := range cells {
			row.Cells = append(row.Cells, resolveSpans(cell))
		}
		table.Rows = append(table.Rows, row)
	}
	s.emit(table, 0)
}

// flushOpen closes out whatever multi-line construct is still open at end
// of input.
func (s *scanner) flushOpen() {
	switch s.mode {
	case modeCodeFence:
		s.flushCodeFence()
	case modeBlockquote:
		s.flushBlockquote()
	case modeCallout:
		s.flushCallout()
	case modeTable:
		s.flushTable()
	}
}

// emit appends a block at the given nesting depth. Depth beyond the
// existing tree attaches to the deepest available child, reconstructing
// the four-space indentation the renderer produces.
func (s *scanner) emit(b Block, depth int) {
	if depth == 0 || len(s.blocks) == 0 {
		s.blocks = append(s.blocks, b)
		return
	}

	parent := &s.blocks[len(s.blocks)-1]
	if parent.Kind == KindTable {
		// Table children are its rows; indented content after a table
		// stays top-level.
		s.blocks = append(s.blocks, b)
		return
	}
	for d := 1; d < depth && len(parent.Children) > 0; d++ {
		parent = &parent.Children[len(parent.Children)-1]
	}
	parent.Children = append(parent.Children, b)
}

func leadingSpaces(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}
