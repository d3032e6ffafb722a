// Package tui is the interactive file browser behind the browse command.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/bob-takuya/notionsync/internal/store"
	"github.com/bob-takuya/notionsync/internal/styles"
	"github.com/bob-takuya/notionsync/internal/workspace"
)

// FileEntry is one row of the browser: a tracked file and how it differs
// from the last commit.
type FileEntry struct {
	Path   string
	Status string // "new", "modified", "deleted", "synced"
}

// FilesMsg is sent when the tracked file listing is ready.
type FilesMsg struct {
	Entries []FileEntry
	Err     error
}

// PreviewMsg is sent when a file preview has been rendered.
type PreviewMsg struct {
	Content string
	Err     error
}

type browseModel struct {
	table          table.Model
	viewport       viewport.Model
	root           string
	store          *store.Store
	entries        []FileEntry
	err            error
	ready          bool
	showingPreview bool
	selected       string
	width          int
	height         int
}

// NewBrowseModel builds the browser over a workspace and its snapshot
// store.
func NewBrowseModel(root string, st *store.Store) browseModel {
	columns := []table.Column{
		{Title: "File", Width: 50},
		{Title: "Status", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(styles.Border)).
		BorderBottom(true).
		Bold(false)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color(styles.Background)).
		Background(lipgloss.Color(styles.Yellow)).
		Bold(false)
	t.SetStyles(ts)

	vp := viewport.New(100, 20)
	vp.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(styles.Border)).
		Padding(1)

	return browseModel{
		table:    t,
		viewport: vp,
		root:     root,
		store:    st,
	}
}

func (m browseModel) Init() tea.Cmd {
	return m.loadFiles()
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(msg.Height - 10)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 6

	case tea.KeyMsg:
		if m.showingPreview {
			switch msg.String() {
			case "q", "esc":
				m.showingPreview = false
				return m, nil
			case "up", "k", "down", "j", "pgup", "pgdown":
				m.viewport, cmd = m.viewport.Update(msg)
				return m, cmd
			}
		} else {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "r":
				return m, m.loadFiles()
			case "up", "k", "down", "j":
				m.table, cmd = m.table.Update(msg)
				return m, cmd
			case "enter":
				if idx := m.table.Cursor(); idx < len(m.entries) {
					entry := m.entries[idx]
					if entry.Status == "deleted" {
						return m, nil
					}
					m.selected = entry.Path
					m.showingPreview = true
					return m, m.loadPreview(entry.Path)
				}
				return m, nil
			}
		}

	case FilesMsg:
		m.ready = true
		m.entries = msg.Entries
		m.err = msg.Err

		rows := make([]table.Row, 0, len(m.entries))
		for _, entry := range m.entries {
			rows = append(rows, table.Row{entry.Path, statusLabel(entry.Status)})
		}
		m.table.SetRows(rows)
		return m, nil

	case PreviewMsg:
		if msg.Err != nil {
			m.viewport.SetContent(styles.ErrorStyle.Render("✗ " + msg.Err.Error()))
		} else {
			m.viewport.SetContent(msg.Content)
		}
		m.viewport.GotoTop()
		return m, nil
	}

	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("NotionSync File Browser"))
	b.WriteString("\n\n")

	if m.err != nil {
		return styles.ErrorStyle.Render("✗ Error: "+m.err.Error()) + "\n"
	}
	if !m.ready {
		return b.String()
	}

	if m.showingPreview {
		b.WriteString(styles.HighlightStyle.Render("Preview: " + m.selected))
		b.WriteString("\n\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • esc/q back"))
		b.WriteString("\n")
	} else {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("Tracked files: %d", len(m.entries))))
		b.WriteString("\n\n")
		b.WriteString(styles.TableStyle.Render(m.table.View()))
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • enter preview • r refresh • q quit"))
		b.WriteString("\n")
	}

	return b.String()
}

func statusLabel(status string) string {
	switch status {
	case "new":
		return styles.SuccessStyle.Render("+ new")
	case "modified":
		return styles.WarningStyle.Render("~ modified")
	case "deleted":
		return styles.ErrorStyle.Render("- deleted")
	default:
		return styles.DimStyle.Render("✓ synced")
	}
}

// loadFiles lists tracked files and classifies each against the last
// commit. Deleted files appear too, so the browser shows what a push
// would archive.
func (m browseModel) loadFiles() tea.Cmd {
	return func() tea.Msg {
		files, err := workspace.TrackedFiles(m.root)
		if err != nil {
			return FilesMsg{Err: err}
		}
		changes, err := m.store.Changes(m.root)
		if err != nil {
			return FilesMsg{Err: err}
		}

		status := make(map[string]string, len(files))
		for _, rel := range files {
			status[rel] = "synced"
		}
		for _, rel := range changes.Added {
			status[rel] = "new"
		}
		for _, rel := range changes.Modified {
			status[rel] = "modified"
		}

		entries := make([]FileEntry, 0, len(files)+len(changes.Deleted))
		for _, rel := range files {
			entries = append(entries, FileEntry{Path: rel, Status: status[rel]})
		}
		for _, rel := range changes.Deleted {
			entries = append(entries, FileEntry{Path: rel, Status: "deleted"})
		}
		return FilesMsg{Entries: entries}
	}
}

// loadPreview renders the selected file with glamour.
func (m browseModel) loadPreview(rel string) tea.Cmd {
	return func() tea.Msg {
		content, err := os.ReadFile(filepath.Join(m.root, rel))
		if err != nil {
			return PreviewMsg{Err: err}
		}
		_, body, err := workspace.ParseFrontMatter(string(content))
		if err != nil {
			body = string(content)
		}

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return PreviewMsg{Content: body}
		}
		rendered, err := renderer.Render(body)
		if err != nil {
			return PreviewMsg{Content: body}
		}
		return PreviewMsg{Content: rendered}
	}
}

// Browse runs the file browser until the user quits.
func Browse(root string, st *store.Store) error {
	p := tea.NewProgram(NewBrowseModel(root, st), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}
