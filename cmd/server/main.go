package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/kbreuer/artikelstamm/internal/adapter/handler"
	"github.com/kbreuer/artikelstamm/internal/adapter/storage"
	"github.com/kbreuer/artikelstamm/internal/config"
	"github.com/kbreuer/artikelstamm/internal/core/service"
	"github.com/kbreuer/artikelstamm/internal/retry"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: cfg.RedisPoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Info("connected to redis")

	// Initialize adapters and service
	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)
	locker := redislock.New(rdb)

	artikelService := service.NewArtikelService(mysqlAdapter, redisAdapter, locker, log, service.Config{
		CacheTTL:  cfg.CacheTTL,
		BatchSize: cfg.BatchSize,
		Retry: retry.Config{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
		},
	})

	// Initialize HTTP server
	artikelHandler := handler.NewArtikelHandler(artikelService)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", artikelHandler.HealthCheck)
	mux.HandleFunc("POST /api/artikel", artikelHandler.Save)
	mux.HandleFunc("GET /api/artikel", artikelHandler.Search)
	mux.HandleFunc("POST /api/artikel/batch", artikelHandler.ProcessBatch)
	mux.HandleFunc("GET /api/artikel/{id}", artikelHandler.GetByID)
	mux.HandleFunc("DELETE /api/artikel/{id}", artikelHandler.Deactivate)
	mux.HandleFunc("POST /api/artikel/{id}/bestand", artikelHandler.UpdateBestand)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("HTTP server stopped")

	rdb.Close()
	db.Close()
	log.Info("connections closed")
}
