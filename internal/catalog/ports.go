package catalog

import (
	"context"
)

// Store is the durable home of the book list. Load runs once at startup,
// Save after every mutation with the full current list.
type Store interface {
	Load(ctx context.Context) ([]Book, error)
	Save(ctx context.Context, books []Book) error
}
