package store

import (
	"context"
	"slices"
	"sync"

	"bookcatalog/internal/catalog"
)

// Memory keeps the persisted copy in process memory. It backs tests and
// the ephemeral server mode.
type Memory struct {
	mu    sync.Mutex
	books []catalog.Book
	saves int
}

// NewMemory returns a memory store holding a copy of seed.
func NewMemory(seed []catalog.Book) *Memory {
	return &Memory{books: slices.Clone(seed)}
}

func (m *Memory) Load(ctx context.Context) ([]catalog.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.books), nil
}

func (m *Memory) Save(ctx context.Context, books []catalog.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books = slices.Clone(books)
	m.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
