package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mailroom/internal/extraction"
)

// LocalSource enumerates scanned documents from a directory tree. Entry IDs
// are absolute file paths.
type LocalSource struct {
	root string
}

// NewLocalSource constructs a filesystem-backed source rooted at dir.
func NewLocalSource(dir string) (*LocalSource, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("local storage: directory required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("local storage: resolve %q: %w", dir, err)
	}
	return &LocalSource{root: abs}, nil
}

// List walks the location directory (relative to the root, or the root
// itself when empty) and returns supported documents in name order.
func (s *LocalSource) List(ctx context.Context, location string) ([]Entry, error) {
	dir := s.root
	if strings.TrimSpace(location) != "" {
		dir = filepath.Join(s.root, location)
	}

	var entries []Entry
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		mimeHint := extraction.MimeTypeForPath(path)
		if mimeHint == "" {
			return nil
		}
		entries = append(entries, Entry{
			ID:          path,
			DisplayName: d.Name(),
			MimeHint:    mimeHint,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("local storage: list %q: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// Fetch reads the document bytes for an entry ID.
func (s *LocalSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	content, err := os.ReadFile(id)
	if err != nil {
		return nil, fmt.Errorf("local storage: read %q: %w", id, err)
	}
	return content, nil
}

// Upload writes content into a destination directory under the root and
// returns the written path. An optional description lands in a sidecar
// text file next to the document.
func (s *LocalSource) Upload(ctx context.Context, content []byte, destination, filename, description string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", fmt.Errorf("local storage: filename required")
	}
	targetDir := s.root
	if strings.TrimSpace(destination) != "" {
		targetDir = filepath.Join(s.root, destination)
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("local storage: create %q: %w", targetDir, err)
	}
	targetPath := filepath.Join(targetDir, filename)
	if err := os.WriteFile(targetPath, content, 0o644); err != nil {
		return "", fmt.Errorf("local storage: write %q: %w", targetPath, err)
	}
	if description = strings.TrimSpace(description); description != "" {
		notePath := targetPath + ".txt"
		if err := os.WriteFile(notePath, []byte(description+"\n"), 0o644); err != nil {
			return "", fmt.Errorf("local storage: write %q: %w", notePath, err)
		}
	}
	return targetPath, nil
}
