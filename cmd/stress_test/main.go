package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/bookstore/internal/adapter/messaging"
	"github.com/rl1809/bookstore/internal/bootstrap"
	"github.com/rl1809/bookstore/internal/config"
	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/core/service"
	"github.com/rl1809/bookstore/internal/port"
)

const (
	initialStock  = 20
	extraRequests = 30
	maxAttempts   = 100
)

var stressBook = domain.MustISBN13("978-0-00-000000-2")

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath, ".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	ctx := context.Background()
	runID := uuid.New()

	books, err := bootstrap.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open %s storage: %v", cfg.Storage, err)
	}
	defer books.Close()

	events := messaging.NewRecorder()
	bookStore := service.NewBookStoreService(books, events)

	// Previous runs against persistent storage may have left copies behind
	before, err := bookStore.AmountInStock(ctx, stressBook)
	if err != nil {
		log.Fatalf("failed to read stock: %v", err)
	}
	if err := bookStore.AddToStock(ctx, stressBook, initialStock); err != nil {
		log.Fatalf("failed to add stock: %v", err)
	}
	expected := before + initialStock
	totalRequests := expected + extraRequests

	// Counters
	var successCount atomic.Int32
	var soldOutCount atomic.Int32
	var conflictCount atomic.Int32

	// Spawn concurrent buyers
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(buyer int) {
			defer wg.Done()

			for attempt := 0; attempt < maxAttempts; attempt++ {
				err := bookStore.Sell(ctx, stressBook)
				switch {
				case err == nil:
					successCount.Add(1)
					return
				case errors.Is(err, port.ErrOptimisticLock):
					conflictCount.Add(1)
					continue
				case errors.Is(err, domain.ErrBookNotInStock):
					soldOutCount.Add(1)
					return
				default:
					log.Printf("run %s buyer %d: %v", runID, buyer, err)
					return
				}
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	soldOut := soldOutCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Run:              %s\n", runID)
	fmt.Printf("Storage:          %s\n", cfg.Storage)
	fmt.Printf("Initial Stock:    %d\n", expected)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Sold Out:         %d\n", soldOut)
	fmt.Printf("Retried Conflicts: %d\n", conflictCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == int32(expected) && soldOut == int32(extraRequests) {
		fmt.Printf("PASS: Exactly %d sales succeeded, %d sold out\n", expected, extraRequests)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d sold out, got %d/%d\n",
			expected, extraRequests, success, soldOut)
	}

	finalStock, err := bookStore.AmountInStock(ctx, stressBook)
	if err != nil {
		log.Fatalf("failed to read final stock: %v", err)
	}
	fmt.Printf("Final Stock: %d\n", finalStock)

	if finalStock == 0 && events.Len() == 1 {
		fmt.Println("PASS: Stock depleted to 0 with one BookSoldOut event")
	} else {
		fmt.Printf("FAIL: Expected stock 0 and 1 event, got %d and %d\n", finalStock, events.Len())
	}
}
