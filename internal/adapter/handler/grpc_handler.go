package handler

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

type GRPCHandler struct {
	bookStore BookStore
}

var _ BookStoreServer = (*GRPCHandler)(nil)

func NewGRPCHandler(bookStore BookStore) *GRPCHandler {
	return &GRPCHandler{bookStore: bookStore}
}

func (h *GRPCHandler) AddToStock(ctx context.Context, req *AddToStockRequest) (*StockResponse, error) {
	isbn13, err := domain.NewISBN13(req.ISBN13)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid isbn13")
	}

	if err := h.bookStore.AddToStock(ctx, isbn13, int(req.Amount)); err != nil {
		return nil, grpcError(err)
	}

	return &StockResponse{
		Success: true,
		Message: "stock added",
	}, nil
}

func (h *GRPCHandler) Sell(ctx context.Context, req *SellRequest) (*StockResponse, error) {
	isbn13, err := domain.NewISBN13(req.ISBN13)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid isbn13")
	}

	if err := h.bookStore.Sell(ctx, isbn13); err != nil {
		return nil, grpcError(err)
	}

	return &StockResponse{
		Success: true,
		Message: "book sold",
	}, nil
}

func (h *GRPCHandler) AmountInStock(ctx context.Context, req *AmountInStockRequest) (*AmountInStockResponse, error) {
	isbn13, err := domain.NewISBN13(req.ISBN13)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid isbn13")
	}

	amount, err := h.bookStore.AmountInStock(ctx, isbn13)
	if err != nil {
		return nil, grpcError(err)
	}

	return &AmountInStockResponse{
		ISBN13:        isbn13.String(),
		AmountInStock: int64(amount),
	}, nil
}

func (h *GRPCHandler) GetBooks(ctx context.Context, req *GetBooksRequest) (*GetBooksResponse, error) {
	books, err := h.bookStore.GetBooks(ctx)
	if err != nil {
		return nil, grpcError(err)
	}

	resp := &GetBooksResponse{ISBN13s: make([]string, 0, len(books))}
	for _, isbn13 := range books {
		resp.ISBN13s = append(resp.ISBN13s, isbn13.String())
	}
	return resp, nil
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, "invalid argument")
	case errors.Is(err, domain.ErrBookNotInStock):
		return status.Error(codes.FailedPrecondition, "sold out")
	case errors.Is(err, port.ErrOptimisticLock):
		return status.Error(codes.Aborted, "concurrent update, retry")
	}

	log.Printf("grpc: internal error: %v", err)
	return status.Error(codes.Internal, "internal error")
}
