package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/rl1809/bookstore/internal/adapter/handler"
	"github.com/rl1809/bookstore/internal/bootstrap"
	"github.com/rl1809/bookstore/internal/config"
	"github.com/rl1809/bookstore/internal/core/service"
	"github.com/rl1809/bookstore/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath, ".env", ".env.local")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize tracing
	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}

	// Initialize storage
	books, err := bootstrap.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open %s storage: %v", cfg.Storage, err)
	}
	log.Printf("using %s storage", cfg.Storage)

	// Register the reference library
	latest := service.LatestBooks
	if len(cfg.ReferenceBooks) > 0 {
		latest = cfg.ReferenceBooks
	}
	isbns, err := service.ParseISBNs(latest)
	if err != nil {
		log.Fatalf("invalid reference books: %v", err)
	}
	added, err := service.NewReferenceLibrary(books, isbns).AddLatestBooks(ctx)
	if err != nil {
		log.Fatalf("failed to register reference books: %v", err)
	}
	log.Printf("registered %d reference books", added)

	// Start event workers
	events := bootstrap.OpenEventSender(ctx, cfg)

	// Initialize service
	bookStore := service.NewBookStoreService(books, events)

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterBookStoreServer(grpcServer, handler.NewGRPCHandler(bookStore))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()

	// Initialize HTTP server
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.NewHTTPHandler(bookStore).Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Stop HTTP server
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	// Stop gRPC server
	grpcServer.GracefulStop()
	log.Println("gRPC server stopped")

	// Drain pending events
	events.Close()
	log.Println("event workers stopped")

	// Close connections
	books.Close()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("failed to flush traces: %v", err)
	}
	log.Println("connections closed")
}
