package workspace

import (
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
	"gopkg.in/yaml.v3"
)

// Meta is the YAML front matter header of a tracked markdown file. The
// notion_id field links the file to its remote page so pushes update in
// place instead of duplicating.
type Meta struct {
	NotionID string         `yaml:"notion_id,omitempty"`
	Title    string         `yaml:"title,omitempty"`
	Tags     string         `yaml:"tags,omitempty"`
	Custom   map[string]any `yaml:",inline"`
}

// Empty reports whether the header carries no fields at all.
func (m Meta) Empty() bool {
	return m.NotionID == "" && m.Title == "" && m.Tags == "" && len(m.Custom) == 0
}

// TagList splits the comma-joined tags field into trimmed tag names.
func (m Meta) TagList() []string {
	if m.Tags == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(m.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ParseFrontMatter splits a document into its front matter header and
// body. A document without a ----delimited header yields a zero Meta and
// the unchanged content.
func ParseFrontMatter(content string) (Meta, string, error) {
	var meta Meta
	body, err := frontmatter.Parse(strings.NewReader(content), &meta)
	if err != nil {
		return Meta{}, "", fmt.Errorf("parse front matter: %w", err)
	}
	return meta, strings.TrimLeft(string(body), "\n"), nil
}

// ComposeDocument prepends a front matter header to a markdown body.
func ComposeDocument(meta Meta, body string) (string, error) {
	if meta.Empty() {
		return body, nil
	}
	header, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}
	return "---\n" + string(header) + "---\n\n" + body, nil
}

// FileName derives a markdown filename from a page title. Titles that
// defeat slug normalization fall back to a character sweep.
func FileName(title string) string {
	if title == "" {
		return "untitled.md"
	}
	if normalized, err := slug.Normalize(title); err == nil && normalized != "" {
		return normalized + ".md"
	}
	return sanitizeTitle(title) + ".md"
}

func sanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
