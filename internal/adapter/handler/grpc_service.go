package handler

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "bookstore.BookStoreService"

type AddToStockRequest struct {
	ISBN13 string `json:"isbn13"`
	Amount int64  `json:"amount"`
}

type SellRequest struct {
	ISBN13 string `json:"isbn13"`
}

type AmountInStockRequest struct {
	ISBN13 string `json:"isbn13"`
}

type AmountInStockResponse struct {
	ISBN13        string `json:"isbn13"`
	AmountInStock int64  `json:"amount_in_stock"`
}

type GetBooksRequest struct{}

type GetBooksResponse struct {
	ISBN13s []string `json:"isbn13s"`
}

type StockResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// BookStoreServer is the server API of bookstore.BookStoreService.
type BookStoreServer interface {
	AddToStock(context.Context, *AddToStockRequest) (*StockResponse, error)
	Sell(context.Context, *SellRequest) (*StockResponse, error)
	AmountInStock(context.Context, *AmountInStockRequest) (*AmountInStockResponse, error)
	GetBooks(context.Context, *GetBooksRequest) (*GetBooksResponse, error)
}

func RegisterBookStoreServer(s grpc.ServiceRegistrar, srv BookStoreServer) {
	s.RegisterService(&bookStoreServiceDesc, srv)
}

var bookStoreServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*BookStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AddToStock",
			Handler: unaryHandler("AddToStock", func(srv BookStoreServer, ctx context.Context, req *AddToStockRequest) (interface{}, error) {
				return srv.AddToStock(ctx, req)
			}),
		},
		{
			MethodName: "Sell",
			Handler: unaryHandler("Sell", func(srv BookStoreServer, ctx context.Context, req *SellRequest) (interface{}, error) {
				return srv.Sell(ctx, req)
			}),
		},
		{
			MethodName: "AmountInStock",
			Handler: unaryHandler("AmountInStock", func(srv BookStoreServer, ctx context.Context, req *AmountInStockRequest) (interface{}, error) {
				return srv.AmountInStock(ctx, req)
			}),
		},
		{
			MethodName: "GetBooks",
			Handler: unaryHandler("GetBooks", func(srv BookStoreServer, ctx context.Context, req *GetBooksRequest) (interface{}, error) {
				return srv.GetBooks(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bookstore.proto",
}

// unaryHandler adapts a typed method to grpc.MethodHandler, honoring interceptors.
func unaryHandler[Req any](method string, call func(BookStoreServer, context.Context, *Req) (interface{}, error)) grpc.MethodHandler {
	fullMethod := "/" + serviceName + "/" + method

	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookStoreServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(BookStoreServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// BookStoreClient calls bookstore.BookStoreService over a gRPC connection.
type BookStoreClient struct {
	cc grpc.ClientConnInterface
}

func NewBookStoreClient(cc grpc.ClientConnInterface) *BookStoreClient {
	return &BookStoreClient{cc: cc}
}

func (c *BookStoreClient) AddToStock(ctx context.Context, in *AddToStockRequest, opts ...grpc.CallOption) (*StockResponse, error) {
	out := new(StockResponse)
	if err := c.invoke(ctx, "AddToStock", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookStoreClient) Sell(ctx context.Context, in *SellRequest, opts ...grpc.CallOption) (*StockResponse, error) {
	out := new(StockResponse)
	if err := c.invoke(ctx, "Sell", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookStoreClient) AmountInStock(ctx context.Context, in *AmountInStockRequest, opts ...grpc.CallOption) (*AmountInStockResponse, error) {
	out := new(AmountInStockResponse)
	if err := c.invoke(ctx, "AmountInStock", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookStoreClient) GetBooks(ctx context.Context, in *GetBooksRequest, opts ...grpc.CallOption) (*GetBooksResponse, error) {
	out := new(GetBooksResponse)
	if err := c.invoke(ctx, "GetBooks", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookStoreClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}
