package notion

import (
	"encoding/json"
	"fmt"

	"github.com/bob-takuya/notionsync/internal/convert"
)

// Parent addresses where a created page lives.
type Parent struct {
	PageID     string `json:"page_id,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
}

// SelectOption is one select or multi-select value.
type SelectOption struct {
	Name string `json:"name"`
}

// Property is a page property in the forms this client reads and writes.
type Property struct {
	Type        string         `json:"type,omitempty"`
	Title       []convert.Span `json:"title,omitempty"`
	RichText    []convert.Span `json:"rich_text,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
}

// TitleProperty builds a title property from plain text.
func TitleProperty(text string) Property {
	return Property{Title: []convert.Span{{Text: text}}}
}

// RichTextProperty builds a rich_text property from plain text.
func RichTextProperty(text string) Property {
	return Property{RichText: []convert.Span{{Text: text}}}
}

// MultiSelectProperty builds a multi_select property from tag names.
func MultiSelectProperty(names []string) Property {
	opts := make([]SelectOption, 0, len(names))
	for _, name := range names {
		opts = append(opts, SelectOption{Name: name})
	}
	return Property{MultiSelect: opts}
}

// PlainText joins the text content of a rich text sequence.
func PlainText(spans []convert.Span) string {
	var out string
	for _, s := range spans {
		out += s.Text
	}
	return out
}

// Page is a Notion page as returned by the pages endpoints.
type Page struct {
	ID         string              `json:"id"`
	Archived   bool                `json:"archived"`
	Properties map[string]Property `json:"properties"`
}

// Title returns the page's title text, whichever property carries it.
func (p *Page) Title() string {
	for name, prop := range p.Properties {
		if len(prop.Title) > 0 && (prop.Type == "title" || name == "title" || name == "Name") {
			return PlainText(prop.Title)
		}
	}
	return ""
}

// Database is a Notion database as returned by the databases endpoints.
type Database struct {
	ID    string         `json:"id"`
	Title []convert.Span `json:"title"`
}

// RawBlock is one child block as fetched from the API, with only the
// fields needed for routing peeked out; Raw keeps the full JSON for the
// converter's decoder.
type RawBlock struct {
	ID          string
	Type        string
	HasChildren bool
	Raw         json.RawMessage
}

func (b *RawBlock) UnmarshalJSON(data []byte) error {
	var head struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		HasChildren bool   `json:"has_children"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	b.ID = head.ID
	b.Type = head.Type
	b.HasChildren = head.HasChildren
	b.Raw = append(b.Raw[:0], data...)
	return nil
}

// QueryFilter is a database query filter; TitleEquals covers the one
// filter shape the sync engine needs.
type QueryFilter struct {
	Property string          `json:"property"`
	Title    *TitleCondition `json:"title,omitempty"`
}

// TitleCondition matches a title property exactly.
type TitleCondition struct {
	Equals string `json:"equals"`
}

// APIError is a non-2xx response decoded from the API error body.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}
