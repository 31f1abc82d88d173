package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

const requestIDHeader = "X-Request-Id"

// BookStore is the application service driven by the handlers.
type BookStore interface {
	AddToStock(ctx context.Context, isbn13 domain.ISBN13, amount int) error
	Sell(ctx context.Context, isbn13 domain.ISBN13) error
	AmountInStock(ctx context.Context, isbn13 domain.ISBN13) (int, error)
	GetBooks(ctx context.Context) ([]domain.ISBN13, error)
}

type HTTPHandler struct {
	bookStore BookStore
}

type AddToStockHTTPRequest struct {
	Amount int `json:"amount"`
}

type StockHTTPData struct {
	ISBN13        domain.ISBN13 `json:"isbn13"`
	AmountInStock int           `json:"amount_in_stock"`
}

type HTTPResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewHTTPHandler(bookStore BookStore) *HTTPHandler {
	return &HTTPHandler{bookStore: bookStore}
}

// Routes mounts the handlers on a chi router with request id, access log and recovery.
func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)
	r.Route("/api/books", func(r chi.Router) {
		r.Get("/", h.GetBooks)
		r.Get("/{isbn13}/stock", h.AmountInStock)
		r.Post("/{isbn13}/stock", h.AddToStock)
		r.Post("/{isbn13}/sell", h.Sell)
	})

	return r
}

func (h *HTTPHandler) AddToStock(w http.ResponseWriter, r *http.Request) {
	isbn13, ok := parseISBN(w, r)
	if !ok {
		return
	}

	var req AddToStockHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, HTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	if err := h.bookStore.AddToStock(r.Context(), isbn13, req.Amount); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, HTTPResponse{
		Success: true,
		Message: "stock added",
	})
}

func (h *HTTPHandler) Sell(w http.ResponseWriter, r *http.Request) {
	isbn13, ok := parseISBN(w, r)
	if !ok {
		return
	}

	if err := h.bookStore.Sell(r.Context(), isbn13); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, HTTPResponse{
		Success: true,
		Message: "book sold",
	})
}

func (h *HTTPHandler) AmountInStock(w http.ResponseWriter, r *http.Request) {
	isbn13, ok := parseISBN(w, r)
	if !ok {
		return
	}

	amount, err := h.bookStore.AmountInStock(r.Context(), isbn13)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, HTTPResponse{
		Success: true,
		Message: "ok",
		Data:    StockHTTPData{ISBN13: isbn13, AmountInStock: amount},
	})
}

func (h *HTTPHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.bookStore.GetBooks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, HTTPResponse{
		Success: true,
		Message: "ok",
		Data:    books,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseISBN(w http.ResponseWriter, r *http.Request) (domain.ISBN13, bool) {
	isbn13, err := domain.NewISBN13(chi.URLParam(r, "isbn13"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, HTTPResponse{
			Success: false,
			Message: "invalid isbn13",
		})
		return domain.ISBN13{}, false
	}
	return isbn13, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
		message = "invalid argument"
	case errors.Is(err, domain.ErrBookNotInStock):
		status = http.StatusGone
		message = "sold out"
	case errors.Is(err, port.ErrOptimisticLock):
		status = http.StatusConflict
		message = "concurrent update, retry"
	default:
		log.Printf("request_id=%s path=%s error=%v", requestIDFrom(r.Context()), r.URL.Path, err)
	}

	writeJSON(w, status, HTTPResponse{
		Success: false,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

type requestIDKey struct{}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Printf("access method=%s path=%s status=%d duration_ms=%d request_id=%s",
			r.Method,
			r.URL.Path,
			ww.Status(),
			time.Since(start).Milliseconds(),
			requestIDFrom(r.Context()),
		)
	})
}
