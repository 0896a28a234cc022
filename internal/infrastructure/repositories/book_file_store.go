package repositories

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/booknest/catalog-service/internal/core/domain/book"
	"github.com/booknest/catalog-service/internal/core/ports"
)

// ErrPathOutsideRoot is returned for stored paths that escape the files directory.
var ErrPathOutsideRoot = errors.New("book file path escapes storage root")

// FSBookFileStore serves book files from a directory on the local filesystem.
type FSBookFileStore struct {
	root string
}

func NewFSBookFileStore(root string) ports.BookFileStore {
	return &FSBookFileStore{root: filepath.Clean(root)}
}

func (s *FSBookFileStore) resolve(relPath string) (string, error) {
	if relPath == "" {
		return "", fmt.Errorf("empty file path: %w", book.ErrNotFound)
	}
	full := filepath.Join(s.root, filepath.FromSlash(relPath))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", relPath, ErrPathOutsideRoot)
	}
	return full, nil
}

func (s *FSBookFileStore) Open(relPath string) (*os.File, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("book file %q: %w", relPath, book.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open book file: %w", err)
	}
	return f, nil
}

// Remove deletes the file; a missing file is not an error.
func (s *FSBookFileStore) Remove(relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove book file: %w", err)
	}
	return nil
}
