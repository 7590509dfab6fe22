package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when no book has the requested id.
var ErrNotFound = errors.New("book not found")

// ValidationError reports required fields missing from a create request.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// ConflictError reports a duplicate title/author pair and carries the
// record that already holds it.
type ConflictError struct {
	Existing Book
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("book already exists with id %d", e.Existing.ID)
}

// Book represents a catalog record. Extra holds fields accepted verbatim
// through updates that are not part of the known schema.
type Book struct {
	ID        int
	Title     string
	Author    string
	Year      *int
	CreatedAt string
	Extra     map[string]any
}

// Query defines the list filters. Both are case-insensitive substring
// matches; Author matches the author field, Search matches title or author.
type Query struct {
	Author string
	Search string
}

func (q Query) matches(b Book) bool {
	if q.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(q.Author)) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(b.Title), needle) &&
			!strings.Contains(strings.ToLower(b.Author), needle) {
			return false
		}
	}
	return true
}

// MarshalJSON emits the known fields in declaration order, then the extra
// fields sorted by key. Updates store values verbatim, so a known field can
// hold a value of another JSON type; it then lives in Extra and shadows its
// typed slot, keeping every key in the document unique.
func (b Book) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, value any) error {
		vb, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode field %q: %w", key, err)
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return nil
	}
	shadowed := func(key string) bool {
		_, ok := b.Extra[key]
		return ok
	}

	if !shadowed("id") {
		if err := write("id", b.ID); err != nil {
			return nil, err
		}
	}
	if !shadowed("title") {
		if err := write("title", b.Title); err != nil {
			return nil, err
		}
	}
	if !shadowed("author") {
		if err := write("author", b.Author); err != nil {
			return nil, err
		}
	}
	if !shadowed("year") {
		if err := write("year", b.Year); err != nil {
			return nil, err
		}
	}
	if b.CreatedAt != "" && !shadowed("created_at") {
		if err := write("created_at", b.CreatedAt); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(b.Extra))
	for k := range b.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := write(k, b.Extra[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (b *Book) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*b = Book{}
	extras := make(map[string]any)
	keepRaw := func(key string, value json.RawMessage) error {
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return err
		}
		extras[key] = v
		return nil
	}

	for key, value := range raw {
		var err error
		switch key {
		case "id":
			err = json.Unmarshal(value, &b.ID)
		case "title":
			err = json.Unmarshal(value, &b.Title)
		case "author":
			err = json.Unmarshal(value, &b.Author)
		case "year":
			err = json.Unmarshal(value, &b.Year)
		case "created_at":
			err = json.Unmarshal(value, &b.CreatedAt)
		default:
			if err := keepRaw(key, value); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			// A known field holding a value of another type; keep it
			// verbatim as a shadowing extra.
			if err := keepRaw(key, value); err != nil {
				return err
			}
		}
	}
	if len(extras) > 0 {
		b.Extra = extras
	}
	return nil
}

func (b *Book) setExtra(key string, value any) {
	if b.Extra == nil {
		b.Extra = make(map[string]any)
	}
	b.Extra[key] = value
}

func (b *Book) clearExtra(key string) {
	delete(b.Extra, key)
}
