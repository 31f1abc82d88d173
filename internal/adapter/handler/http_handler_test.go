package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/bookstore/internal/adapter/messaging"
	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/core/service"
)

const testISBN = "978-3-86490-387-8"

func setupHTTP(t *testing.T) (http.Handler, *messaging.Recorder) {
	t.Helper()
	events := messaging.NewRecorder()
	svc := service.NewBookStoreService(storage.NewMemoryRepository(), events)
	return NewHTTPHandler(svc).Routes(), events
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, HTTPResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp HTTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHTTPHandler_AddSellAndQuery(t *testing.T) {
	h, events := setupHTTP(t)

	rec, resp := doRequest(t, h, http.MethodPost, "/api/books/"+testISBN+"/stock", `{"amount": 2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec, _ = doRequest(t, h, http.MethodPost, "/api/books/"+testISBN+"/sell", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp = doRequest(t, h, http.MethodGet, "/api/books/"+testISBN+"/stock", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "9783864903878", data["isbn13"])
	assert.Equal(t, float64(1), data["amount_in_stock"])

	rec, _ = doRequest(t, h, http.MethodPost, "/api/books/"+testISBN+"/sell", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, events.Len())

	rec, resp = doRequest(t, h, http.MethodPost, "/api/books/"+testISBN+"/sell", "")
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "sold out", resp.Message)
}

func TestHTTPHandler_GetBooks(t *testing.T) {
	h, _ := setupHTTP(t)
	doRequest(t, h, http.MethodPost, "/api/books/"+testISBN+"/stock", `{"amount": 1}`)
	doRequest(t, h, http.MethodPost, "/api/books/978-1-60309-322-4/stock", `{"amount": 1}`)

	rec, resp := doRequest(t, h, http.MethodGet, "/api/books/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"9781603093224", "9783864903878"}, resp.Data)
}

func TestHTTPHandler_BadRequests(t *testing.T) {
	h, _ := setupHTTP(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		message string
	}{
		{"invalid isbn", http.MethodGet, "/api/books/978-3-86490-387-9/stock", "", "invalid isbn13"},
		{"malformed body", http.MethodPost, "/api/books/" + testISBN + "/stock", "{", "invalid request body"},
		{"zero amount", http.MethodPost, "/api/books/" + testISBN + "/stock", `{"amount": 0}`, "invalid argument"},
		{"negative amount", http.MethodPost, "/api/books/" + testISBN + "/stock", `{"amount": -3}`, "invalid argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doRequest(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestHTTPHandler_StockOverflowRejected(t *testing.T) {
	h, _ := setupHTTP(t)
	body := `{"amount": 9223372036854775807}`

	rec, _ := doRequest(t, h, http.MethodPost, "/api/books/"+testISBN+"/stock", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doRequest(t, h, http.MethodPost, "/api/books/"+testISBN+"/stock", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid argument", resp.Message)

	rec, _ = doRequest(t, h, http.MethodPost, "/api/books/"+testISBN+"/sell", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPHandler_UnknownBookHasNoStock(t *testing.T) {
	h, _ := setupHTTP(t)

	rec, resp := doRequest(t, h, http.MethodGet, "/api/books/"+testISBN+"/stock", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(0), data["amount_in_stock"])
}

func TestHTTPHandler_KeepsRequestID(t *testing.T) {
	h, _ := setupHTTP(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestWriteError_Internal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	writeError(rec, req, domain.ErrBookNotFound)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
