package blobStore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
)

const fileScheme = "file://"

// FileStore keeps uploads under a single directory on local disk.
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		root = config.BlobRoot
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving blob root: %w", err)
	}
	if err := os.MkdirAll(abs, 0750); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &FileStore{root: abs}, nil
}

func (s *FileStore) Fetch(ctx context.Context, location string) ([]byte, error) {
	path := strings.TrimPrefix(location, fileScheme)
	if path == "" || strings.Contains(path, "://") {
		return nil, fmt.Errorf("%w: %q", commonModels.ErrUnsupportedLocation, location)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (s *FileStore) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(name))
	path := filepath.Join(s.root, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("storage error: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("write error: %w", err)
	}
	return path, n, nil
}
