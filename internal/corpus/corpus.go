// Package corpus loads annotation files from a directory.
package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	uieval "github.com/jamesainslie/go-uieval"
)

// DefaultPattern matches JSON files directly inside the directory.
const DefaultPattern = "*.json"

// Dir is a uieval.Source backed by a directory of JSON annotation files.
type Dir struct {
	root    string
	fsys    fs.FS
	pattern string
}

// Option configures a Dir.
type Option func(*Dir)

// WithPattern sets the doublestar glob used to list files (default: "*.json").
// Use "**/*.json" to include subdirectories.
func WithPattern(p string) Option {
	return func(d *Dir) {
		if p != "" {
			d.pattern = p
		}
	}
}

// NewDir returns a source reading annotation files under root.
func NewDir(root string, opts ...Option) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open annotation dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open annotation dir: %s is not a directory", root)
	}

	d := &Dir{
		root:    root,
		fsys:    os.DirFS(root),
		pattern: DefaultPattern,
	}
	for _, opt := range opts {
		opt(d)
	}
	if !doublestar.ValidatePattern(d.pattern) {
		return nil, fmt.Errorf("invalid file pattern %q", d.pattern)
	}
	return d, nil
}

// Root returns the directory the source reads from.
func (d *Dir) Root() string { return d.root }

// Files lists matching annotation files as slash-separated paths relative
// to the root, sorted.
func (d *Dir) Files(ctx context.Context) ([]string, error) {
	var names []string
	err := doublestar.GlobWalk(d.fsys, d.pattern, func(p string, entry fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		names = append(names, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.root, err)
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the boxes stored in name. A missing file wraps uieval.ErrNotFound.
func (d *Dir) Load(ctx context.Context, name string) ([]uieval.Box, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(d.fsys, path.Clean(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", uieval.ErrNotFound, name)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	boxes, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return boxes, nil
}

// Decode parses an annotation document. Both a bare JSON array of boxes and
// an object of the form {"boxes": [...]} are accepted.
func Decode(data []byte) ([]uieval.Box, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}

	if trimmed[0] == '{' {
		var doc struct {
			Boxes []uieval.Box `json:"boxes"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		return doc.Boxes, nil
	}

	var boxes []uieval.Box
	if err := json.Unmarshal(trimmed, &boxes); err != nil {
		return nil, err
	}
	return boxes, nil
}

// Write stores boxes as an indented JSON array at path, creating parent
// directories as needed.
func Write(p string, boxes []uieval.Box) error {
	if boxes == nil {
		boxes = []uieval.Box{}
	}
	data, err := json.MarshalIndent(boxes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode boxes: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(p, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}
