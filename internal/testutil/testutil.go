// Package testutil holds shared helpers for handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
)

// NewRequest creates a new HTTP request for testing. A non-nil body is
// JSON-encoded; use NewRawRequest to send malformed payloads.
func NewRequest(method, path string, body interface{}) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	bodyBytes, _ := json.Marshal(body)
	r := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// NewRawRequest creates a request with a verbatim body.
func NewRawRequest(method, path, body string) *http.Request {
	r := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// RecordResponse captures the pieces of a recorded response tests assert on.
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse decodes the recorded response body as a JSON object.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   w.Code,
		Header: result.Header,
		Body:   bodyMap,
	}
}
