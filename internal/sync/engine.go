// Package sync orchestrates pushes and pulls between the local markdown
// workspace and the remote Notion workspace. All content flows through
// the convert package in both directions; the engine only decides which
// page each file maps to.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bob-takuya/notionsync/internal/config"
	"github.com/bob-takuya/notionsync/internal/convert"
	"github.com/bob-takuya/notionsync/internal/logger"
	"github.com/bob-takuya/notionsync/internal/notion"
	"github.com/bob-takuya/notionsync/internal/store"
	"github.com/bob-takuya/notionsync/internal/workspace"
)

// MainFile is the workspace file mapped to the configured page itself.
// Every other markdown file becomes a child page.
const MainFile = "index.md"

// DatabaseDir is where database-mode pulls land.
const DatabaseDir = "notion_db"

// API is the slice of the Notion client the engine drives. Tests run
// against a fake implementation.
type API interface {
	GetPage(ctx context.Context, pageID string) (*notion.Page, error)
	CreatePage(ctx context.Context, parent notion.Parent, properties map[string]notion.Property, children []convert.Block) (*notion.Page, error)
	UpdatePageProperties(ctx context.Context, pageID string, properties map[string]notion.Property) error
	ArchivePage(ctx context.Context, pageID string) error
	GetBlockChildren(ctx context.Context, blockID string) ([]notion.RawBlock, error)
	AppendBlockChildren(ctx context.Context, blockID string, blocks []convert.Block) error
	ClearPageContent(ctx context.Context, pageID string) error
	QueryDatabase(ctx context.Context, databaseID string, filter *notion.QueryFilter) ([]notion.Page, error)
	GetChildPages(ctx context.Context, pageID string) ([]*notion.Page, error)
}

// Engine maps workspace files to remote pages and back.
type Engine struct {
	api   API
	cfg   *config.Config
	store *store.Store
	log   *logger.Logger
	root  string
}

// New builds an engine rooted at the given workspace directory.
func New(api API, cfg *config.Config, st *store.Store, lg *logger.Logger, root string) *Engine {
	if lg == nil {
		lg = logger.Discard()
	}
	return &Engine{api: api, cfg: cfg, store: st, log: lg, root: root}
}

// PushResult counts what a push did.
type PushResult struct {
	Pushed   int
	Skipped  int
	Archived int
}

// PullResult counts what a pull did.
type PullResult struct {
	Pages  int
	Failed int
}

// Push sends every tracked file to the remote workspace. The workspace
// must have at least one commit so deletions since the previous push can
// be detected.
func (e *Engine) Push(ctx context.Context) (*PushResult, error) {
	last, err := e.store.LastCommit()
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, fmt.Errorf("nothing committed yet: run commit before push")
	}

	files, err := workspace.TrackedFiles(e.root)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	target := e.cfg.PageID
	if e.cfg.DatabaseMode() {
		target = e.cfg.DatabaseID
	}
	e.log.PushStarted(target, len(files))

	res := &PushResult{}
	present := make(map[string]bool, len(files))
	for _, rel := range files {
		present[rel] = true
		if err := e.pushFile(ctx, rel, res); err != nil {
			return nil, fmt.Errorf("push %s: %w", rel, err)
		}
	}

	if !e.cfg.DatabaseMode() {
		if err := e.archiveDeleted(ctx, last, present, res); err != nil {
			return nil, err
		}
	}

	e.log.PushCompleted(res.Pushed, res.Skipped, time.Since(start))
	return res, nil
}

func (e *Engine) pushFile(ctx context.Context, rel string, res *PushResult) error {
	content, err := os.ReadFile(filepath.Join(e.root, rel))
	if err != nil {
		return err
	}
	meta, body, err := workspace.ParseFrontMatter(string(content))
	if err != nil {
		return err
	}

	if e.cfg.DatabaseMode() {
		if rel == MainFile {
			e.log.Skipped(rel, "index file is not a database entry")
			res.Skipped++
			return nil
		}
		if meta.Empty() {
			e.log.Skipped(rel, "no front matter")
			res.Skipped++
			return nil
		}
		return e.pushEntry(ctx, rel, meta, body, res)
	}

	if rel == MainFile {
		return e.pushMain(ctx, body, res)
	}
	return e.pushChild(ctx, rel, meta, body, res)
}

// pushMain replaces the configured page's content with the index file.
// A leading top-level heading is treated as the page title rather than
// duplicated as a content block.
func (e *Engine) pushMain(ctx context.Context, body string, res *PushResult) error {
	blocks := convert.MarkdownToBlocks(body)
	if len(blocks) > 0 && blocks[0].Kind == convert.KindHeading1 {
		title := spansText(blocks[0].Spans)
		blocks = blocks[1:]
		props := map[string]notion.Property{"title": notion.TitleProperty(title)}
		if err := e.api.UpdatePageProperties(ctx, e.cfg.PageID, props); err != nil {
			return err
		}
	}
	if err := e.api.ClearPageContent(ctx, e.cfg.PageID); err != nil {
		return err
	}
	if err := e.api.AppendBlockChildren(ctx, e.cfg.PageID, blocks); err != nil {
		return err
	}
	e.log.PageSynced(MainFile, e.cfg.PageID, "updated")
	res.Pushed++
	return nil
}

func (e *Engine) pushChild(ctx context.Context, rel string, meta workspace.Meta, body string, res *PushResult) error {
	title := meta.Title
	if title == "" {
		title = fileStem(rel)
	}
	blocks := convert.MarkdownToBlocks(body)
	props := map[string]notion.Property{"title": notion.TitleProperty(title)}

	if meta.NotionID != "" {
		if err := e.api.UpdatePageProperties(ctx, meta.NotionID, props); err != nil {
			return err
		}
		if err := e.api.ClearPageContent(ctx, meta.NotionID); err != nil {
			return err
		}
		if err := e.api.AppendBlockChildren(ctx, meta.NotionID, blocks); err != nil {
			return err
		}
		e.log.PageSynced(rel, meta.NotionID, "updated")
		res.Pushed++
		return nil
	}

	page, err := e.api.CreatePage(ctx, notion.Parent{PageID: e.cfg.PageID}, props, blocks)
	if err != nil {
		return err
	}

	// Record the new page id so the next push updates it in place.
	meta.NotionID = page.ID
	meta.Title = title
	doc, err := workspace.ComposeDocument(meta, body)
	if err != nil {
		return err
	}
	if err := workspace.WriteFile(filepath.Join(e.root, rel), []byte(doc)); err != nil {
		return err
	}
	e.log.PageSynced(rel, page.ID, "created")
	res.Pushed++
	return nil
}

// pushEntry pushes one file as a database row. The file stem is the
// Name property, tags map to a multi_select, and any remaining front
// matter keys become rich_text properties. Rows are matched by Name.
func (e *Engine) pushEntry(ctx context.Context, rel string, meta workspace.Meta, body string, res *PushResult) error {
	name := fileStem(rel)
	props := map[string]notion.Property{
		"Name": notion.TitleProperty(name),
	}
	if tags := meta.TagList(); len(tags) > 0 {
		props["Tags"] = notion.MultiSelectProperty(tags)
	}
	for key, value := range meta.Custom {
		props[key] = notion.RichTextProperty(fmt.Sprint(value))
	}

	blocks := convert.MarkdownToBlocks(body)
	filter := &notion.QueryFilter{Property: "Name", Title: &notion.TitleCondition{Equals: name}}
	existing, err := e.api.QueryDatabase(ctx, e.cfg.DatabaseID, filter)
	if err != nil {
		return err
	}

	if len(existing) > 0 {
		pageID := existing[0].ID
		if err := e.api.UpdatePageProperties(ctx, pageID, props); err != nil {
			return err
		}
		if err := e.api.ClearPageContent(ctx, pageID); err != nil {
			return err
		}
		if err := e.api.AppendBlockChildren(ctx, pageID, blocks); err != nil {
			return err
		}
		e.log.PageSynced(rel, pageID, "updated")
		res.Pushed++
		return nil
	}

	page, err := e.api.CreatePage(ctx, notion.Parent{DatabaseID: e.cfg.DatabaseID}, props, blocks)
	if err != nil {
		return err
	}
	e.log.PageSynced(rel, page.ID, "created")
	res.Pushed++
	return nil
}

// archiveDeleted archives the remote page of every file that was in the
// previous commit but is gone from the working tree.
func (e *Engine) archiveDeleted(ctx context.Context, last *store.Commit, present map[string]bool, res *PushResult) error {
	for _, rec := range last.Files {
		if present[rec.Path] || rec.Path == MainFile {
			continue
		}
		meta, _, err := workspace.ParseFrontMatter(rec.Content)
		if err != nil || meta.NotionID == "" {
			continue
		}
		if err := e.api.ArchivePage(ctx, meta.NotionID); err != nil {
			return fmt.Errorf("archive %s: %w", rec.Path, err)
		}
		e.log.PageSynced(rec.Path, meta.NotionID, "archived")
		res.Archived++
	}
	return nil
}

// Pull fetches remote content and regenerates the local files. In page
// mode the configured page becomes index.md and each child page a slug
// file; in database mode every row lands under notion_db/.
func (e *Engine) Pull(ctx context.Context) (*PullResult, error) {
	start := time.Now()
	res := &PullResult{}

	if e.cfg.DatabaseMode() {
		e.log.PullStarted(e.cfg.DatabaseID)
		if err := e.pullDatabase(ctx, res); err != nil {
			return nil, err
		}
	} else {
		e.log.PullStarted(e.cfg.PageID)
		if err := e.pullPage(ctx, res); err != nil {
			return nil, err
		}
	}

	e.log.PullCompleted(res.Pages, time.Since(start))
	return res, nil
}

func (e *Engine) pullPage(ctx context.Context, res *PullResult) error {
	page, err := e.api.GetPage(ctx, e.cfg.PageID)
	if err != nil {
		return err
	}

	blocks, err := e.remoteBlocks(ctx, e.cfg.PageID)
	if err != nil {
		return fmt.Errorf("page %s: %w", e.cfg.PageID, err)
	}
	body := "# " + page.Title() + "\n"
	if md := renderBody(blocks); md != "" {
		body += "\n" + md
	}
	if err := workspace.WriteFile(filepath.Join(e.root, MainFile), []byte(body)); err != nil {
		return err
	}
	e.log.PageSynced(MainFile, e.cfg.PageID, "pulled")
	res.Pages++

	children, err := e.api.GetChildPages(ctx, e.cfg.PageID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if child.Archived {
			continue
		}
		if err := e.pullChild(ctx, child, res); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) pullChild(ctx context.Context, child *notion.Page, res *PullResult) error {
	title := child.Title()
	name := workspace.FileName(title)

	blocks, err := e.remoteBlocks(ctx, child.ID)
	if err != nil {
		// A malformed page must not poison the rest of the pull.
		e.log.ConversionError(name, err)
		res.Failed++
		return nil
	}

	meta := workspace.Meta{NotionID: child.ID, Title: title}
	doc, err := workspace.ComposeDocument(meta, renderBody(blocks))
	if err != nil {
		return err
	}
	if err := workspace.WriteFile(filepath.Join(e.root, name), []byte(doc)); err != nil {
		return err
	}
	e.log.PageSynced(name, child.ID, "pulled")
	res.Pages++
	return nil
}

func (e *Engine) pullDatabase(ctx context.Context, res *PullResult) error {
	pages, err := e.api.QueryDatabase(ctx, e.cfg.DatabaseID, nil)
	if err != nil {
		return err
	}
	for i := range pages {
		page := &pages[i]
		if page.Archived {
			continue
		}
		title := page.Title()
		name := workspace.FileName(title)

		blocks, err := e.remoteBlocks(ctx, page.ID)
		if err != nil {
			e.log.ConversionError(name, err)
			res.Failed++
			continue
		}

		meta := entryMeta(page, title)
		doc, err := workspace.ComposeDocument(meta, renderBody(blocks))
		if err != nil {
			return err
		}
		path := filepath.Join(e.root, DatabaseDir, name)
		if err := workspace.WriteFile(path, []byte(doc)); err != nil {
			return err
		}
		e.log.PageSynced(filepath.Join(DatabaseDir, name), page.ID, "pulled")
		res.Pages++
	}
	return nil
}

// entryMeta maps a database row's properties back into front matter.
func entryMeta(page *notion.Page, title string) workspace.Meta {
	meta := workspace.Meta{NotionID: page.ID, Title: title}
	for key, prop := range page.Properties {
		switch {
		case len(prop.Title) > 0:
			// Already captured as the title.
		case len(prop.MultiSelect) > 0 && key == "Tags":
			names := make([]string, 0, len(prop.MultiSelect))
			for _, opt := range prop.MultiSelect {
				names = append(names, opt.Name)
			}
			meta.Tags = strings.Join(names, ", ")
		case prop.Select != nil:
			if meta.Custom == nil {
				meta.Custom = map[string]any{}
			}
			meta.Custom[key] = prop.Select.Name
		case len(prop.RichText) > 0:
			if meta.Custom == nil {
				meta.Custom = map[string]any{}
			}
			meta.Custom[key] = notion.PlainText(prop.RichText)
		}
	}
	return meta
}

// remoteBlocks fetches a page's children and decodes them into converter
// blocks. Sub-page and unsupported placeholders are dropped before
// decoding; table blocks get their row children fetched and nested so
// the decoder sees a complete table.
func (e *Engine) remoteBlocks(ctx context.Context, blockID string) ([]convert.Block, error) {
	raws, err := e.api.GetBlockChildren(ctx, blockID)
	if err != nil {
		return nil, err
	}

	kept := make([]json.RawMessage, 0, len(raws))
	for _, rb := range raws {
		switch rb.Type {
		case "child_page", "child_database", "unsupported":
			continue
		}
		raw := rb.Raw
		if rb.Type == "table" && rb.HasChildren {
			rows, err := e.api.GetBlockChildren(ctx, rb.ID)
			if err != nil {
				return nil, err
			}
			raw, err = withChildren(raw, rows)
			if err != nil {
				return nil, err
			}
		}
		kept = append(kept, raw)
	}

	data, err := json.Marshal(kept)
	if err != nil {
		return nil, err
	}
	return convert.DecodeBlocks(data)
}

// withChildren grafts fetched child blocks onto a raw block's JSON so
// the decoder sees them nested.
func withChildren(raw json.RawMessage, children []notion.RawBlock) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	kids := make([]json.RawMessage, len(children))
	for i, c := range children {
		kids[i] = c.Raw
	}
	nested, err := json.Marshal(kids)
	if err != nil {
		return nil, err
	}
	obj["children"] = nested
	return json.Marshal(obj)
}

// renderBody renders blocks to markdown with a single trailing newline.
func renderBody(blocks []convert.Block) string {
	md := strings.TrimRight(convert.BlocksToMarkdown(blocks), "\n")
	if md == "" {
		return ""
	}
	return md + "\n"
}

func fileStem(rel string) string {
	return strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
}

func spansText(spans []convert.Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
