package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Version is reported by the status endpoint.
const Version = "1.0.0"

var validate = validator.New()

// CreateParams carries the caller-supplied fields of a new book.
type CreateParams struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Year   *int   `json:"year"`
}

// Status describes the running service.
type Status struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	TotalBooks int               `json:"total_books"`
	Endpoints  map[string]string `json:"endpoints"`
}

// Service provides the catalog business rules over a Store. The in-memory
// list is the source of truth; the store is rewritten after each mutation.
// One mutex spans every read-modify-persist sequence, since net/http
// dispatches requests concurrently.
type Service struct {
	store Store
	now   func() time.Time

	mu    sync.Mutex
	books []Book
	// lastID is the highest id ever assigned this run, so deleting the
	// newest book does not free its id for the next create.
	lastID int
}

// NewService loads the persisted book list and returns a ready service.
func NewService(ctx context.Context, store Store) (*Service, error) {
	books, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	s := &Service{store: store, now: time.Now, books: books}
	for _, b := range books {
		if b.ID > s.lastID {
			s.lastID = b.ID
		}
	}
	return s, nil
}

// List returns the books matching q, in insertion order. The result is
// never nil so it encodes as an empty JSON array.
func (s *Service) List(ctx context.Context, q Query) []Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Book, 0, len(s.books))
	for _, b := range s.books {
		if q.matches(b) {
			out = append(out, b)
		}
	}
	return out
}

// Get returns the book with the given id.
func (s *Service) Get(ctx context.Context, id int) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.books {
		if b.ID == id {
			return b, nil
		}
	}
	return Book{}, ErrNotFound
}

// Create validates p, rejects duplicate title/author pairs and appends a
// new record with the next free id.
func (s *Service) Create(ctx context.Context, p CreateParams) (Book, error) {
	if missing := missingFields(p); len(missing) > 0 {
		return Book{}, &ValidationError{Missing: missing}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.books {
		if strings.EqualFold(b.Title, p.Title) && strings.EqualFold(b.Author, p.Author) {
			return Book{}, &ConflictError{Existing: b}
		}
	}

	book := Book{
		ID:        s.lastID + 1,
		Title:     p.Title,
		Author:    p.Author,
		Year:      p.Year,
		CreatedAt: s.now().Format("2006-01-02"),
	}
	next := append(slices.Clone(s.books), book)
	if err := s.store.Save(ctx, next); err != nil {
		return Book{}, fmt.Errorf("persist books: %w", err)
	}
	s.books = next
	s.lastID = book.ID
	return book, nil
}

// Update merges every key in fields except "id" into the stored record.
// Keys outside the known schema are stored verbatim.
func (s *Service) Update(ctx context.Context, id int, fields map[string]any) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.books {
		if b.ID != id {
			continue
		}
		updated := b
		if b.Extra != nil {
			updated.Extra = make(map[string]any, len(b.Extra))
			for k, v := range b.Extra {
				updated.Extra[k] = v
			}
		}
		applyFields(&updated, fields)

		next := slices.Clone(s.books)
		next[i] = updated
		if err := s.store.Save(ctx, next); err != nil {
			return Book{}, fmt.Errorf("persist books: %w", err)
		}
		s.books = next
		return updated, nil
	}
	return Book{}, ErrNotFound
}

// Delete removes the book with the given id and returns it. Ids of deleted
// books are never reused.
func (s *Service) Delete(ctx context.Context, id int) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.books {
		if b.ID != id {
			continue
		}
		next := make([]Book, 0, len(s.books)-1)
		next = append(next, s.books[:i]...)
		next = append(next, s.books[i+1:]...)
		if err := s.store.Save(ctx, next); err != nil {
			return Book{}, fmt.Errorf("persist books: %w", err)
		}
		s.books = next
		return b, nil
	}
	return Book{}, ErrNotFound
}

// Status returns the descriptive status payload with the live book count.
func (s *Service) Status(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Status:     "online",
		Version:    Version,
		TotalBooks: len(s.books),
		Endpoints: map[string]string{
			"GET /books":         "List all books",
			"GET /books/{id}":    "Get a book by id",
			"POST /books":        "Add a book",
			"PUT /books/{id}":    "Update a book",
			"DELETE /books/{id}": "Delete a book",
			"GET /status":        "API status",
		},
	}
}

func missingFields(p CreateParams) []string {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var missing []string
	for _, fe := range err.(validator.ValidationErrors) {
		if fe.Tag() != "required" {
			continue
		}
		name := fe.Field()
		missing = append(missing, strings.ToLower(name[:1])+name[1:])
	}
	return missing
}

// applyFields overwrites every given key except "id". A known field given a
// value of another JSON type is stored verbatim as a shadowing extra (see
// Book.MarshalJSON); its typed slot is cleared so the old value is gone.
func applyFields(b *Book, fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "id":
			// immutable
		case "title":
			if s, ok := value.(string); ok {
				b.Title = s
				b.clearExtra(key)
			} else {
				b.Title = ""
				b.setExtra(key, value)
			}
		case "author":
			if s, ok := value.(string); ok {
				b.Author = s
				b.clearExtra(key)
			} else {
				b.Author = ""
				b.setExtra(key, value)
			}
		case "created_at":
			if s, ok := value.(string); ok {
				b.CreatedAt = s
				b.clearExtra(key)
			} else {
				b.CreatedAt = ""
				b.setExtra(key, value)
			}
		case "year":
			switch n := value.(type) {
			case nil:
				b.Year = nil
				b.clearExtra(key)
			case float64:
				y := int(n)
				b.Year = &y
				b.clearExtra(key)
			default:
				b.Year = nil
				b.setExtra(key, value)
			}
		default:
			b.setExtra(key, value)
		}
	}
}
