package convert

import (
	"strings"
)

// BlocksToMarkdown renders an ordered block sequence back to markdown
// text. Spacing is deterministic: headings, paragraphs, quotes, dividers,
// code, tables and callouts each end with a blank line; list items rely on
// contiguous lines instead.
func BlocksToMarkdown(blocks []Block) string {
	var sb strings.Builder
	renderBlocks(&sb, blocks)
	return sb.String()
}

func renderBlocks(sb *strings.Builder, blocks []Block) {
	for _, b := range blocks {
		renderBlock(sb, b)
	}
}

func renderBlock(sb *strings.Builder, b Block) {
	switch b.Kind {
	case KindHeading1:
		sb.WriteString("# " + spansMarkup(b.Spans) + "\n\n")
	case KindHeading2:
		sb.WriteString("## " + spansMarkup(b.Spans) + "\n\n")
	case KindHeading3:
		sb.WriteString("### " + spansMarkup(b.Spans) + "\n\n")

	case KindParagraph:
		sb.WriteString(spansMarkup(b.Spans) + "\n\n")

	case KindBulletItem:
		sb.WriteString("- " + spansMarkup(b.Spans) + "\n")
	case KindNumberedItem:
		// Ordinals are not tracked; every numbered item renders "1." and
		// markdown viewers re-sequence the list.
		sb.WriteString("1. " + spansMarkup(b.Spans) + "\n")
	case KindTaskItem:
		box := "[ ]"
		if b.Checked {
			box = "[x]"
		}
		sb.WriteString("- " + box + " " + spansMarkup(b.Spans) + "\n")

	case KindQuote:
		for _, line := range strings.Split(spansMarkup(b.Spans), "\n") {
			sb.WriteString("> " + line + "\n")
		}
		sb.WriteString("\n")

	case KindCode:
		sb.WriteString("```" + b.Language + "\n")
		if b.RawText != "" {
			sb.WriteString(b.RawText + "\n")
		}
		sb.WriteString("```\n\n")

	case KindDivider:
		sb.WriteString("---\n\n")

	case KindCallout:
		sb.WriteString(calloutOpen + " " + b.Emoji + "\n")
		sb.WriteString(spansMarkup(b.Spans) + "\n")
		sb.WriteString(":::\n\n")

	case KindTable:
		renderTable(sb, b)
	}

	if len(b.Children) > 0 && b.Kind != KindTable {
		var child strings.Builder
		renderBlocks(&child, b.Children)
		sb.WriteString(indentLines(child.String(), "    "))
	}
}

func renderTable(sb *strings.Builder, b Block) {
	for i, row := range b.Rows {
		cells := make([]string, b.ColumnCount)
		for c := 0; c < b.ColumnCount; c++ {
			// Short rows pad with empty cells.
			if c < len(row.Cells) {
				cells[c] = escapeTableCell(spansMarkup(row.Cells[c]))
			}
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")

		if i == 0 && b.HasHeaderRow {
			dashes := make([]string, b.ColumnCount)
			for c := range dashes {
				dashes[c] = "---"
			}
			sb.WriteString("| " + strings.Join(dashes, " | ") + " |\n")
		}
	}
	sb.WriteString("\n")
}

func escapeTableCell(text string) string {
	return strings.ReplaceAll(text, "|", "\\|")
}

// indentLines prefixes every non-empty line with the given indent.
func indentLines(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}
