package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// LocalArchive keeps snapshots under a directory on disk.
type LocalArchive struct {
	basePath string
}

// NewLocalArchive creates basePath if it does not exist.
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if basePath == "" {
		basePath = "./data/snapshots"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &LocalArchive{basePath: basePath}, nil
}

// Put writes the snapshot file.
func (a *LocalArchive) Put(ctx context.Context, lawID string, fetchedAt time.Time, html []byte) (string, error) {
	key, err := newKey(lawID, fetchedAt)
	if err != nil {
		return "", err
	}
	fullPath := a.pathFor(key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, html, 0o644); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return key, nil
}

// Get opens a snapshot file.
func (a *LocalArchive) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	file, err := os.Open(a.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	return file, nil
}

// Delete removes a snapshot file.
func (a *LocalArchive) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	err := os.Remove(a.pathFor(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// List returns the law's snapshot keys, oldest first.
func (a *LocalArchive) List(ctx context.Context, lawID string) ([]string, error) {
	if err := validateSegment(lawID); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(a.basePath, lawID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		keys = append(keys, lawID+"/"+entry.Name())
	}
	slices.Sort(keys)
	return keys, nil
}

func (a *LocalArchive) pathFor(key string) string {
	return filepath.Join(a.basePath, filepath.FromSlash(key))
}
