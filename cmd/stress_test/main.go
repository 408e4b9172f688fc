package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/kbreuer/artikelstamm/internal/adapter/storage"
	"github.com/kbreuer/artikelstamm/internal/config"
	"github.com/kbreuer/artikelstamm/internal/core/domain"
	"github.com/kbreuer/artikelstamm/internal/core/service"
	"github.com/kbreuer/artikelstamm/internal/retry"
)

const (
	initialStock  = 20
	totalRequests = 50
)

// Fires concurrent stock decrements against one article and verifies that
// the row lock serializes them: exactly initialStock succeed, the rest fail
// with insufficient stock, and the final balance is 0.
func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	svc := service.NewArtikelService(
		storage.NewMySQLAdapter(db),
		storage.NewRedisAdapter(rdb),
		nil,
		config.NewLogger("error"),
		service.Config{
			CacheTTL:  time.Hour,
			BatchSize: cfg.BatchSize,
			Retry:     retry.Config{MaxAttempts: 3, Delay: time.Second},
		},
	)

	// Seed the test article
	artikel := domain.NewArtikel()
	artikel.Artikelnummer = fmt.Sprintf("STRESS-%d", time.Now().UnixNano())
	artikel.Bezeichnung = "Stresstest Artikel"
	artikel.Preis = decimal.NewFromInt(1)
	artikel.Lagerbestand = initialStock
	artikel.MaxBestand = initialStock

	if _, err := svc.Save(ctx, artikel); err != nil {
		log.Fatalf("failed to seed artikel: %v", err)
	}

	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.UpdateLagerbestand(ctx, artikel.ID, -1)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrInsufficientStock):
				failCount.Add(1)
			default:
				log.Printf("unexpected error: %v", err)
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == int32(initialStock) && fail == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: Exactly %d adjustments succeeded, %d rejected\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, fail)
	}

	final, err := svc.GetByID(ctx, artikel.ID)
	if err != nil {
		log.Fatalf("failed to read final state: %v", err)
	}
	fmt.Printf("Final Stock: %d\n", final.Lagerbestand)

	if final.Lagerbestand == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", final.Lagerbestand)
	}
}
