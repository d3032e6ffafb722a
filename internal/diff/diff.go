// Package diff renders unified diffs between the working tree and the
// last commit snapshot.
package diff

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/bob-takuya/notionsync/internal/store"
	"github.com/bob-takuya/notionsync/internal/workspace"
)

// File diffs one tracked file against its record in the last commit. A
// missing side is treated as empty, so new and deleted files diff
// against nothing.
func File(root, rel string, last *store.Commit) (string, error) {
	var old string
	if last != nil {
		if rec, ok := last.File(rel); ok {
			old = rec.Content
		}
	}

	var current string
	content, err := os.ReadFile(filepath.Join(root, rel))
	if err == nil {
		current = string(content)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}

	if old == current {
		return "", nil
	}

	edits := myers.ComputeEdits(span.URIFromPath(rel), old, current)
	return fmt.Sprint(gotextdiff.ToUnified("a/"+rel, "b/"+rel, old, edits)), nil
}

// WorkingTree diffs every file that changed since the last commit and
// returns the concatenated unified diffs. Paths are the union of the
// working tree and the commit, so deletions show up too.
func WorkingTree(root string, last *store.Commit) (string, error) {
	files, err := workspace.TrackedFiles(root)
	if err != nil {
		return "", err
	}

	paths := make(map[string]bool, len(files))
	for _, rel := range files {
		paths[rel] = true
	}
	if last != nil {
		for _, rec := range last.Files {
			paths[rec.Path] = true
		}
	}

	ordered := make([]string, 0, len(paths))
	for rel := range paths {
		ordered = append(ordered, rel)
	}
	sort.Strings(ordered)

	var out string
	for _, rel := range ordered {
		unified, err := File(root, rel, last)
		if err != nil {
			return "", err
		}
		out += unified
	}
	return out, nil
}

// Render wraps a unified diff in a diff code fence and renders it for
// the terminal. Falls back to the plain fenced text when the renderer
// cannot be built.
func Render(unified string) string {
	fenced := fmt.Sprintf("```diff\n%s```\n", unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return fenced
	}
	rendered, err := renderer.Render(fenced)
	if err != nil {
		return fenced
	}
	return rendered
}
