package convert

import (
	"encoding/json"
	"fmt"
)

// Kind identifies a block type. The values are the Notion API type names,
// so a Kind doubles as the payload key in the wire format.
type Kind string

const (
	KindHeading1     Kind = "heading_1"
	KindHeading2     Kind = "heading_2"
	KindHeading3     Kind = "heading_3"
	KindParagraph    Kind = "paragraph"
	KindBulletItem   Kind = "bulleted_list_item"
	KindNumberedItem Kind = "numbered_list_item"
	KindTaskItem     Kind = "to_do"
	KindQuote        Kind = "quote"
	KindCode         Kind = "code"
	KindDivider      Kind = "divider"
	KindCallout      Kind = "callout"
	KindTable        Kind = "table"

	kindTableRow Kind = "table_row"
)

// Block is one structural unit of a document. Only the fields relevant to
// its Kind are populated; everything else stays zero. Blocks are plain
// value trees with no shared state, so they are safe to build and walk
// from any number of goroutines.
type Block struct {
	Kind Kind

	// Heading, Paragraph, BulletItem, NumberedItem, TaskItem, Quote, Callout
	Spans []Span

	// TaskItem
	Checked bool

	// CodeBlock
	RawText  string
	Language string

	// Callout
	Emoji string

	// Table
	ColumnCount  int
	HasHeaderRow bool
	Rows         []TableRow

	// Nested content. For Table blocks the rows are the children and are
	// carried in Rows instead.
	Children []Block
}

// TableRow is an ordered sequence of cells, each cell an ordered sequence
// of spans.
type TableRow struct {
	Cells [][]Span
}

// Level returns the heading level for heading blocks and 0 otherwise.
func (b Block) Level() int {
	switch b.Kind {
	case KindHeading1:
		return 1
	case KindHeading2:
		return 2
	case KindHeading3:
		return 3
	}
	return 0
}

// Heading builds a heading block, clamping level to 1..3.
func Heading(level int, spans []Span) Block {
	kind := KindHeading1
	switch {
	case level >= 3:
		kind = KindHeading3
	case level == 2:
		kind = KindHeading2
	}
	return Block{Kind: kind, Spans: spans}
}

// StructureError reports a block received from the remote API whose shape
// does not match its declared type. It aborts a pull rather than letting
// remote content drop silently.
type StructureError struct {
	Index int    // position in the decoded block list
	Field string // offending type or payload key
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("block %d: unsupported or malformed block structure at %q", e.Index, e.Field)
}

// Wire payload shapes. Field names and nesting follow the Notion block
// schema exactly; they are consumed by the remote service and must not
// drift.

type richTextPayload struct {
	RichText []Span `json:"rich_text"`
}

type todoPayload struct {
	RichText []Span `json:"rich_text"`
	Checked  bool   `json:"checked"`
}

type codePayload struct {
	RichText []Span `json:"rich_text"`
	Language string `json:"language"`
}

type calloutIcon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

type calloutPayload struct {
	RichText []Span      `json:"rich_text"`
	Icon     calloutIcon `json:"icon"`
}

type tablePayload struct {
	TableWidth      int               `json:"table_width"`
	HasColumnHeader bool              `json:"has_column_header"`
	HasRowHeader    bool              `json:"has_row_header"`
	Children        []json.RawMessage `json:"children,omitempty"`
}

type tableRowPayload struct {
	Cells [][]Span `json:"cells"`
}

// MarshalJSON produces the Notion block shape:
// {"object":"block","type":<kind>,<kind>:{...},"children":[...]}.
func (b Block) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"object": "block",
		"type":   string(b.Kind),
	}

	switch b.Kind {
	case KindHeading1, KindHeading2, KindHeading3, KindParagraph,
		KindBulletItem, KindNumberedItem, KindQuote:
		out[string(b.Kind)] = richTextPayload{RichText: spansOrEmpty(b.Spans)}
	case KindTaskItem:
		out[string(b.Kind)] = todoPayload{RichText: spansOrEmpty(b.Spans), Checked: b.Checked}
	case KindCode:
		out[string(b.Kind)] = codePayload{
			RichText: []Span{{Text: b.RawText}},
			Language: b.Language,
		}
	case KindDivider:
		out[string(b.Kind)] = struct{}{}
	case KindCallout:
		out[string(b.Kind)] = calloutPayload{
			RichText: spansOrEmpty(b.Spans),
			Icon:     calloutIcon{Type: "emoji", Emoji: b.Emoji},
		}
	case KindTable:
		rows := make([]json.RawMessage, 0, len(b.Rows))
		for _, row := range b.Rows {
			raw, err := json.Marshal(map[string]any{
				"object":             "block",
				"type":               string(kindTableRow),
				string(kindTableRow): tableRowPayload{Cells: cellsOrEmpty(row.Cells)},
			})
			if err != nil {
				return nil, err
			}
			rows = append(rows, raw)
		}
		out[string(b.Kind)] = tablePayload{
			TableWidth:      b.ColumnCount,
			HasColumnHeader: b.HasHeaderRow,
			Children:        rows,
		}
	default:
		return nil, fmt.Errorf("marshal: unknown block kind %q", b.Kind)
	}

	if len(b.Children) > 0 && b.Kind != KindTable {
		out["children"] = b.Children
	}

	return json.Marshal(out)
}

// UnmarshalJSON rehydrates a block from the wire shape. A type outside the
// supported set, or a declared type whose payload is absent, yields a
// StructureError; the caller rewrites the index via DecodeBlocks.
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var kind string
	if typeRaw, ok := raw["type"]; ok {
		if err := json.Unmarshal(typeRaw, &kind); err != nil {
			return &StructureError{Field: "type"}
		}
	}
	if kind == "" {
		return &StructureError{Field: "type"}
	}

	payload, ok := raw[kind]
	if !ok {
		return &StructureError{Field: kind}
	}

	block := Block{Kind: Kind(kind)}

	switch Kind(kind) {
	case KindHeading1, KindHeading2, KindHeading3, KindParagraph,
		KindBulletItem, KindNumberedItem, KindQuote:
		var p richTextPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return &StructureError{Field: kind}
		}
		block.Spans = p.RichText
	case KindTaskItem:
		var p todoPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return &StructureError{Field: kind}
		}
		block.Spans = p.RichText
		block.Checked = p.Checked
	case KindCode:
		var p codePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return &StructureError{Field: kind}
		}
		for _, span := range p.RichText {
			block.RawText += span.Text
		}
		block.Language = p.Language
	case KindDivider:
		// no payload fields
	case KindCallout:
		var p calloutPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return &StructureError{Field: kind}
		}
		block.Spans = p.RichText
		block.Emoji = p.Icon.Emoji
	case KindTable:
		var p tablePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return &StructureError{Field: kind}
		}
		block.ColumnCount = p.TableWidth
		block.HasHeaderRow = p.HasColumnHeader
		rowData := p.Children
		if len(rowData) == 0 {
			// The API returns fetched table rows as block-level children.
			var outer struct {
				Children []json.RawMessage `json:"children"`
			}
			if err := json.Unmarshal(data, &outer); err == nil {
				rowData = outer.Children
			}
		}
		for _, rowRaw := range rowData {
			row, err := decodeTableRow(rowRaw)
			if err != nil {
				return err
			}
			block.Rows = append(block.Rows, row)
		}
	default:
		return &StructureError{Field: kind}
	}

	if block.Kind != KindTable {
		var outer struct {
			Children []Block `json:"children"`
		}
		if err := json.Unmarshal(data, &outer); err != nil {
			return err
		}
		block.Children = outer.Children
	}

	*b = block
	return nil
}

func decodeTableRow(data []byte) (TableRow, error) {
	var raw struct {
		Type     string           `json:"type"`
		TableRow *tableRowPayload `json:"table_row"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return TableRow{}, &StructureError{Field: string(kindTableRow)}
	}
	if raw.Type != string(kindTableRow) || raw.TableRow == nil {
		return TableRow{}, &StructureError{Field: string(kindTableRow)}
	}
	return TableRow{Cells: raw.TableRow.Cells}, nil
}

// DecodeBlocks rehydrates a JSON array of remote blocks. On failure the
// returned StructureError carries the index of the offending block.
func DecodeBlocks(data []byte) ([]Block, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}

	blocks := make([]Block, 0, len(raws))
	for i, raw := range raws {
		var block Block
		if err := block.UnmarshalJSON(raw); err != nil {
			if se, ok := err.(*StructureError); ok {
				se.Index = i
				return nil, se
			}
			return nil, fmt.Errorf("decode block %d: %w", i, err)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func spansOrEmpty(spans []Span) []Span {
	if spans == nil {
		return []Span{}
	}
	return spans
}

func cellsOrEmpty(cells [][]Span) [][]Span {
	if cells == nil {
		return [][]Span{}
	}
	return cells
}
