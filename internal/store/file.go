// Package store holds the Record Store implementations behind
// catalog.Store: a JSON-file store for production and an in-memory one for
// tests and ephemeral runs.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"bookcatalog/internal/catalog"
)

// File persists the book list as a pretty-printed JSON array at a fixed
// path. An absent file is not an error; Load falls back to the seed list.
type File struct {
	path string
}

// OpenFile prepares a file store at path, creating the parent directory.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("data file path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return &File{path: path}, nil
}

func (f *File) Load(ctx context.Context) ([]catalog.Book, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return SeedBooks(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var books []catalog.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return books, nil
}

func (f *File) Save(ctx context.Context, books []catalog.Book) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(books); err != nil {
		return fmt.Errorf("encode books: %w", err)
	}
	if err := os.WriteFile(f.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// SeedBooks is the starting catalog for a store with no persisted state.
func SeedBooks() []catalog.Book {
	year := func(y int) *int { return &y }
	return []catalog.Book{
		{ID: 1, Title: "War and Peace", Author: "Leo Tolstoy", Year: year(1869)},
		{ID: 2, Title: "The Master and Margarita", Author: "Mikhail Bulgakov", Year: year(1967)},
		{ID: 3, Title: "Crime and Punishment", Author: "Fyodor Dostoevsky", Year: year(1866)},
	}
}
