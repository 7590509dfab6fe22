package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookcatalog/internal/catalog"
	"bookcatalog/internal/store"
	"bookcatalog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T, seed []catalog.Book) *catalog.HTTPHandler {
	t.Helper()
	svc, err := catalog.NewService(context.Background(), store.NewMemory(seed))
	require.NoError(t, err)
	return catalog.NewHTTPHandler(svc)
}

func TestHTTPHandlerList(t *testing.T) {
	handler := newHandler(t, store.SeedBooks())

	tests := []struct {
		name      string
		target    string
		wantCount float64
	}{
		{name: "all books", target: "/books", wantCount: 3},
		{name: "author filter", target: "/books?author=Tolstoy", wantCount: 1},
		{name: "search filter", target: "/books?search=margarita", wantCount: 1},
		{name: "combined filters exclude", target: "/books?author=Tolstoy&search=margarita", wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.List(w, testutil.NewRequest(http.MethodGet, tt.target, nil))

			res := testutil.RecordHTTPResponse(w)
			assert.Equal(t, http.StatusOK, res.Code)
			assert.Equal(t, tt.wantCount, res.Body["count"])
			assert.Len(t, res.Body["books"], int(tt.wantCount))
		})
	}

	t.Run("empty catalog lists as empty array", func(t *testing.T) {
		handler := newHandler(t, []catalog.Book{})

		w := httptest.NewRecorder()
		handler.List(w, testutil.NewRequest(http.MethodGet, "/books", nil))

		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, []any{}, res.Body["books"])
	})
}

func TestHTTPHandlerGet(t *testing.T) {
	handler := newHandler(t, store.SeedBooks())

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodGet, "/books/1", nil)
		r.SetPathValue("id", "1")

		handler.Get(w, r)

		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "application/json; charset=utf-8", res.Header.Get("Content-Type"))
		assert.Equal(t, float64(1), res.Body["id"])
		assert.Equal(t, "War and Peace", res.Body["title"])
	})

	t.Run("missing id names the id in the message", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodGet, "/books/999", nil)
		r.SetPathValue("id", "999")

		handler.Get(w, r)

		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.NotEmpty(t, res.Body["error"])
		assert.Contains(t, res.Body["message"], "999")
	})

	t.Run("non-integer id gets the catch-all shape", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodGet, "/books/abc", nil)
		r.SetPathValue("id", "abc")

		handler.Get(w, r)

		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Contains(t, res.Body, "available_endpoints")
	})
}

func TestHTTPHandlerCreate(t *testing.T) {
	t.Run("first book gets id 1", func(t *testing.T) {
		handler := newHandler(t, []catalog.Book{})

		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/books",
			map[string]any{"title": "Pnin", "author": "Vladimir Nabokov"}))

		res := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusCreated, res.Code)
		assert.NotEmpty(t, res.Body["message"])
		book := res.Body["book"].(map[string]any)
		assert.Equal(t, float64(1), book["id"])
		assert.NotEmpty(t, book["created_at"])
	})

	t.Run("duplicate returns the existing record", func(t *testing.T) {
		handler := newHandler(t, []catalog.Book{})

		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/books",
			map[string]any{"title": "Pnin", "author": "Vladimir Nabokov"}))
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/books",
			map[string]any{"title": "Pnin", "author": "Vladimir Nabokov"}))

		res := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusConflict, res.Code)
		existing := res.Body["existing_book"].(map[string]any)
		assert.Equal(t, float64(1), existing["id"])
	})

	t.Run("missing fields are listed", func(t *testing.T) {
		handler := newHandler(t, []catalog.Book{})

		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/books",
			map[string]any{"wrong": "data"}))

		res := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, []any{"title", "author"}, res.Body["missing"])
	})

	t.Run("wrong-typed fields count as missing", func(t *testing.T) {
		handler := newHandler(t, []catalog.Book{})

		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/books",
			map[string]any{"title": 123, "author": 456}))

		res := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, []any{"title", "author"}, res.Body["missing"])
	})

	t.Run("malformed body", func(t *testing.T) {
		handler := newHandler(t, []catalog.Book{})

		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRawRequest(http.MethodPost, "/books", "{not json"))

		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "request body must be a JSON object", res.Body["error"])
	})

	t.Run("valid JSON that is not an object", func(t *testing.T) {
		handler := newHandler(t, []catalog.Book{})

		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRawRequest(http.MethodPost, "/books", "5"))

		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "request body must be a JSON object", res.Body["error"])
	})
}

func TestHTTPHandlerUpdate(t *testing.T) {
	t.Run("partial update", func(t *testing.T) {
		handler := newHandler(t, store.SeedBooks())

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPut, "/books/1",
			map[string]any{"year": 1868, "genre": "epic"})
		r.SetPathValue("id", "1")

		handler.Update(w, r)

		res := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, res.Code)
		book := res.Body["book"].(map[string]any)
		assert.Equal(t, "War and Peace", book["title"])
		assert.Equal(t, float64(1868), book["year"])
		assert.Equal(t, "epic", book["genre"])
	})

	t.Run("unknown id", func(t *testing.T) {
		handler := newHandler(t, store.SeedBooks())

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPut, "/books/999", map[string]any{"year": 1900})
		r.SetPathValue("id", "999")

		handler.Update(w, r)

		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.NotEmpty(t, res.Body["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		handler := newHandler(t, store.SeedBooks())

		w := httptest.NewRecorder()
		r := testutil.NewRawRequest(http.MethodPut, "/books/1", "not json")
		r.SetPathValue("id", "1")

		handler.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandlerDelete(t *testing.T) {
	handler := newHandler(t, store.SeedBooks())

	w := httptest.NewRecorder()
	r := testutil.NewRequest(http.MethodDelete, "/books/2", nil)
	r.SetPathValue("id", "2")

	handler.Delete(w, r)

	res := testutil.RecordHTTPResponse(w)
	require.Equal(t, http.StatusOK, res.Code)
	deleted := res.Body["deleted_book"].(map[string]any)
	assert.Equal(t, float64(2), deleted["id"])

	w = httptest.NewRecorder()
	r = testutil.NewRequest(http.MethodGet, "/books/2", nil)
	r.SetPathValue("id", "2")

	handler.Get(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHTTPHandlerStatus(t *testing.T) {
	handler := newHandler(t, store.SeedBooks())

	w := httptest.NewRecorder()
	handler.Status(w, testutil.NewRequest(http.MethodGet, "/status", nil))

	res := testutil.RecordHTTPResponse(w)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "online", res.Body["status"])
	assert.Equal(t, catalog.Version, res.Body["version"])
	assert.Equal(t, float64(3), res.Body["total_books"])
	assert.Len(t, res.Body["endpoints"], 6)
}

func TestHTTPHandlerNotFound(t *testing.T) {
	handler := newHandler(t, store.SeedBooks())

	w := httptest.NewRecorder()
	handler.NotFound(w, testutil.NewRequest(http.MethodGet, "/nope", nil))

	res := testutil.RecordHTTPResponse(w)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.NotEmpty(t, res.Body["error"])
	assert.Len(t, res.Body["available_endpoints"], 3)
}
