package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/renameio"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/bob-takuya/notionsync/internal/config"
	"github.com/bob-takuya/notionsync/internal/workspace"
)

// FileRecord is one file captured in a commit snapshot. Content is stored
// in full so diffs and pushes work without the working tree; the hash
// makes change detection cheap.
type FileRecord struct {
	Path    string `json:"path"`
	Hash    string `json:"hash"`
	Content string `json:"content"`
}

// Commit is a snapshot of every tracked file at a point in time.
type Commit struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Message   string       `json:"message"`
	Files     []FileRecord `json:"files"`
}

// Stamp returns the filename-safe, sortable form of the commit timestamp.
func (c *Commit) Stamp() string {
	return strings.ReplaceAll(c.Timestamp.Format(time.RFC3339), ":", "-")
}

// File returns the record for path, if the commit contains it.
func (c *Commit) File(path string) (FileRecord, bool) {
	for _, f := range c.Files {
		if f.Path == path {
			return f, true
		}
	}
	return FileRecord{}, false
}

// Changes lists workspace paths by how they differ from the last commit.
type Changes struct {
	Added    []string
	Modified []string
	Deleted  []string
}

// Clean reports whether nothing changed since the last commit.
func (c Changes) Clean() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Deleted) == 0
}

// Store keeps commit snapshots as JSON files under the data directory,
// with a config.json pointer naming the last commit.
type Store struct {
	dir string
}

// New opens the snapshot store in the default data directory.
func New() *Store {
	return &Store{dir: config.DataDir()}
}

// NewAt opens a snapshot store rooted at dir. Used by tests.
func NewAt(dir string) *Store {
	return &Store{dir: dir}
}

type pointer struct {
	LastCommit string `json:"last_commit"`
}

func (s *Store) commitsDir() string {
	return filepath.Join(s.dir, "commits")
}

func (s *Store) pointerPath() string {
	return filepath.Join(s.dir, "config.json")
}

// HashContent returns the content hash used for change detection.
func HashContent(content []byte) string {
	sum := blake3.Sum256(content)
	return "blake3:" + hex.EncodeToString(sum[:])
}

// Commit snapshots every tracked markdown file under dir.
func (s *Store) Commit(dir, message string) (*Commit, error) {
	files, err := workspace.TrackedFiles(dir)
	if err != nil {
		return nil, err
	}

	commit := &Commit{
		ID:        uuid.New().String(),
		Timestamp: time.Now().Truncate(time.Second),
		Message:   message,
	}
	for _, path := range files {
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		commit.Files = append(commit.Files, FileRecord{
			Path:    path,
			Hash:    HashContent(content),
			Content: string(content),
		})
	}

	if err := os.MkdirAll(s.commitsDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create commits directory: %w", err)
	}

	data, err := json.MarshalIndent(commit, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal commit: %w", err)
	}
	path := filepath.Join(s.commitsDir(), commit.Stamp()+".json")
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write commit snapshot: %w", err)
	}

	ptr, err := json.MarshalIndent(pointer{LastCommit: commit.Stamp()}, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := renameio.WriteFile(s.pointerPath(), ptr, 0644); err != nil {
		return nil, fmt.Errorf("failed to update last commit pointer: %w", err)
	}

	return commit, nil
}

// LastCommit loads the snapshot the pointer names. Returns nil with no
// error when nothing has been committed yet.
func (s *Store) LastCommit() (*Commit, error) {
	data, err := os.ReadFile(s.pointerPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read commit pointer: %w", err)
	}

	var ptr pointer
	if err := json.Unmarshal(data, &ptr); err != nil {
		return nil, fmt.Errorf("corrupt commit pointer: %w", err)
	}
	if ptr.LastCommit == "" {
		return nil, nil
	}

	return s.load(ptr.LastCommit)
}

func (s *Store) load(stamp string) (*Commit, error) {
	path := filepath.Join(s.commitsDir(), stamp+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", stamp, err)
	}
	var commit Commit
	if err := json.Unmarshal(data, &commit); err != nil {
		return nil, fmt.Errorf("corrupt commit snapshot %s: %w", stamp, err)
	}
	return &commit, nil
}

// Log lists all snapshots newest-first.
func (s *Store) Log() ([]*Commit, error) {
	entries, err := os.ReadDir(s.commitsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}

	var commits []*Commit
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		commit, err := s.load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}

	sort.Slice(commits, func(i, j int) bool {
		return commits[i].Timestamp.After(commits[j].Timestamp)
	})
	return commits, nil
}

// Changes compares the working tree under dir against the last commit.
// Before the first commit every tracked file counts as added.
func (s *Store) Changes(dir string) (Changes, error) {
	var changes Changes

	current, err := workspace.TrackedFiles(dir)
	if err != nil {
		return changes, err
	}

	last, err := s.LastCommit()
	if err != nil {
		return changes, err
	}
	if last == nil {
		changes.Added = current
		return changes, nil
	}

	committed := make(map[string]string, len(last.Files))
	for _, f := range last.Files {
		committed[f.Path] = f.Hash
	}

	seen := make(map[string]bool, len(current))
	for _, path := range current {
		seen[path] = true
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
		if err != nil {
			return changes, fmt.Errorf("failed to read %s: %w", path, err)
		}
		hash, ok := committed[path]
		switch {
		case !ok:
			changes.Added = append(changes.Added, path)
		case hash != HashContent(content):
			changes.Modified = append(changes.Modified, path)
		}
	}

	for _, f := range last.Files {
		if !seen[f.Path] {
			changes.Deleted = append(changes.Deleted, f.Path)
		}
	}
	sort.Strings(changes.Deleted)

	return changes, nil
}
