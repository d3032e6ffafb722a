package convert

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSpanWireShape(t *testing.T) {
	tests := []struct {
		name string
		span Span
		want string
	}{
		{
			name: "plain",
			span: Span{Text: "hello"},
			want: `{"type":"text","text":{"content":"hello"}}`,
		},
		{
			name: "bold",
			span: Span{Text: "hi", Bold: true},
			want: `{"type":"text","text":{"content":"hi"},"annotations":{"bold":true}}`,
		},
		{
			name: "link",
			span: Span{Text: "docs", Link: "https://example.com"},
			want: `{"type":"text","text":{"content":"docs","link":{"url":"https://example.com"}}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.span)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("wire = %s, want %s", data, tt.want)
			}

			var back Span
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if back != tt.span {
				t.Errorf("round trip = %+v, want %+v", back, tt.span)
			}
		})
	}
}

func TestBlockWireShape(t *testing.T) {
	block := Block{Kind: KindParagraph, Spans: []Span{{Text: "hi"}}}
	data, err := json.Marshal(block)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal wire: %v", err)
	}
	if string(wire["object"]) != `"block"` {
		t.Errorf("object = %s, want \"block\"", wire["object"])
	}
	if string(wire["type"]) != `"paragraph"` {
		t.Errorf("type = %s, want \"paragraph\"", wire["type"])
	}
	if string(wire["paragraph"]) != `{"rich_text":[{"type":"text","text":{"content":"hi"}}]}` {
		t.Errorf("payload = %s", wire["paragraph"])
	}
}

func TestBlockCodecRoundTrip(t *testing.T) {
	blocks := []Block{
		Heading(2, []Span{{Text: "Section"}}),
		{Kind: KindTaskItem, Spans: []Span{{Text: "ship it"}}, Checked: true},
		{Kind: KindCode, RawText: "make test", Language: "shell"},
		{Kind: KindDivider},
		{Kind: KindCallout, Emoji: "📌", Spans: []Span{{Text: "pinned"}}},
		{
			Kind:  KindBulletItem,
			Spans: []Span{{Text: "outer"}},
			Children: []Block{
				{Kind: KindBulletItem, Spans: []Span{{Text: "inner"}}},
			},
		},
		{
			Kind:         KindTable,
			ColumnCount:  2,
			HasHeaderRow: true,
			Rows: []TableRow{
				{Cells: [][]Span{{{Text: "k"}}, {{Text: "v"}}}},
				{Cells: [][]Span{{{Text: "a"}}, {{Text: "1"}}}},
			},
		},
	}

	data, err := json.Marshal(blocks)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	back, err := DecodeBlocks(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back) != len(blocks) {
		t.Fatalf("decoded %d blocks, want %d", len(back), len(blocks))
	}
	for i := range blocks {
		if back[i].Kind != blocks[i].Kind {
			t.Errorf("block %d kind = %q, want %q", i, back[i].Kind, blocks[i].Kind)
		}
	}

	if !back[1].Checked {
		t.Error("task checked state lost")
	}
	if back[2].RawText != "make test" || back[2].Language != "shell" {
		t.Errorf("code block = %+v", back[2])
	}
	if back[4].Emoji != "📌" {
		t.Errorf("callout emoji = %q", back[4].Emoji)
	}
	if len(back[5].Children) != 1 || plainText(back[5].Children[0].Spans) != "inner" {
		t.Errorf("nested children lost: %+v", back[5])
	}
	table := back[6]
	if table.ColumnCount != 2 || !table.HasHeaderRow || len(table.Rows) != 2 {
		t.Errorf("table = %+v", table)
	}
	if plainText(table.Rows[1].Cells[1]) != "1" {
		t.Errorf("table cell = %q", plainText(table.Rows[1].Cells[1]))
	}
}

func TestDecodeUnknownTypeFails(t *testing.T) {
	data := []byte(`[
		{"object":"block","type":"paragraph","paragraph":{"rich_text":[]}},
		{"object":"block","type":"synced_block","synced_block":{}}
	]`)
	_, err := DecodeBlocks(data)
	var se *StructureError
	if !errors.As(err, &se) {
		t.Fatalf("expected StructureError, got %v", err)
	}
	if se.Index != 1 {
		t.Errorf("index = %d, want 1", se.Index)
	}
	if se.Field != "synced_block" {
		t.Errorf("field = %q, want synced_block", se.Field)
	}
}

func TestDecodeMissingPayloadFails(t *testing.T) {
	data := []byte(`[{"object":"block","type":"quote"}]`)
	_, err := DecodeBlocks(data)
	var se *StructureError
	if !errors.As(err, &se) {
		t.Fatalf("expected StructureError, got %v", err)
	}
	if se.Field != "quote" {
		t.Errorf("field = %q, want quote", se.Field)
	}
}

func TestDecodeMissingTypeFails(t *testing.T) {
	data := []byte(`[{"object":"block"}]`)
	_, err := DecodeBlocks(data)
	var se *StructureError
	if !errors.As(err, &se) {
		t.Fatalf("expected StructureError, got %v", err)
	}
	if se.Field != "type" {
		t.Errorf("field = %q, want type", se.Field)
	}
}

func TestDecodeTableRowsFromBlockChildren(t *testing.T) {
	// Fetched tables carry their rows as block-level children rather than
	// inside the table payload.
	data := []byte(`[{
		"object":"block","type":"table",
		"table":{"table_width":1,"has_column_header":false,"has_row_header":false},
		"children":[
			{"object":"block","type":"table_row","table_row":{"cells":[[{"type":"text","text":{"content":"x"}}]]}}
		]
	}]`)
	blocks, err := DecodeBlocks(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(blocks) != 1 || len(blocks[0].Rows) != 1 {
		t.Fatalf("blocks = %+v", blocks)
	}
	if plainText(blocks[0].Rows[0].Cells[0]) != "x" {
		t.Errorf("cell = %q", plainText(blocks[0].Rows[0].Cells[0]))
	}
}
