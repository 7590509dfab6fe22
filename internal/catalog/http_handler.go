package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"bookcatalog/internal/httpx"
)

// availableEndpoints is the hint list in the catch-all 404 body.
var availableEndpoints = []string{"/books", "/books/{id}", "/status"}

// HTTPHandler maps the wire protocol onto the catalog service.
type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// List handles GET /books with optional author and search filters.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	books := h.svc.List(r.Context(), Query{
		Author: query.Get("author"),
		Search: query.Get("search"),
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"count": len(books),
		"books": books,
	})
}

// Get handles GET /books/{id}.
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookID(w, r)
	if !ok {
		return
	}
	book, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, map[string]string{
				"error":   "book not found",
				"message": fmt.Sprintf("book with ID %d does not exist", id),
			})
			return
		}
		h.serverError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, book)
}

// Create handles POST /books. The body is decoded as a JSON object first;
// a title or author of the wrong JSON type counts as missing, not as a
// malformed request.
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "request body must be a JSON object",
		})
		return
	}

	var params CreateParams
	if s, ok := body["title"].(string); ok {
		params.Title = s
	}
	if s, ok := body["author"].(string); ok {
		params.Author = s
	}
	if n, ok := body["year"].(float64); ok {
		year := int(n)
		params.Year = &year
	}

	book, err := h.svc.Create(r.Context(), params)
	if err != nil {
		var ve *ValidationError
		var ce *ConflictError
		switch {
		case errors.As(err, &ve):
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "required fields are missing",
				"missing": ve.Missing,
			})
		case errors.As(err, &ce):
			httpx.WriteJSON(w, http.StatusConflict, map[string]any{
				"error":         "book already exists",
				"existing_book": ce.Existing,
			})
		default:
			h.serverError(w, err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "book created",
		"book":    book,
	})
}

// Update handles PUT /books/{id}. Any JSON object is accepted; unknown keys
// are stored on the record verbatim.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "request body must be a JSON object",
		})
		return
	}

	book, err := h.svc.Update(r.Context(), id, fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "book updated",
		"book":    book,
	})
}

// Delete handles DELETE /books/{id}.
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookID(w, r)
	if !ok {
		return
	}
	book, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":      "book deleted",
		"deleted_book": book,
	})
}

// Status handles GET /status.
func (h *HTTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.svc.Status(r.Context()))
}

// NotFound is the catch-all for unmatched paths.
func (h *HTTPHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusNotFound, map[string]any{
		"error":               "resource not found",
		"available_endpoints": availableEndpoints,
	})
}

// bookID parses the {id} path segment. A non-integer segment gets the same
// catch-all body an unmatched path would.
func (h *HTTPHandler) bookID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error": "book not found",
		})
		return
	}
	h.serverError(w, err)
}

func (h *HTTPHandler) serverError(w http.ResponseWriter, err error) {
	log.Printf("catalog: %v", err)
	httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
