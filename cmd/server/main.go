package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payflow/config"
	"payflow/internal/database"
	"payflow/internal/dedup"
	"payflow/internal/repository"
	"payflow/internal/router"
	"payflow/internal/sweeper"
	"payflow/pkg/processor"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.Webhook.Secret == "" {
		log.Fatal("PROCESSOR_WEBHOOK_SECRET is required")
	}

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var provider processor.Provider
	if cfg.Processor.APIKey != "" {
		provider = processor.NewClient(cfg.Processor.BaseURL, cfg.Processor.APIKey, cfg.Processor.Timeout)
	} else {
		log.Printf("[PROCESSOR] no API key configured, using stub provider")
		provider = &processor.StubProvider{}
	}

	deduper, err := dedup.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Webhook.DedupTTL)
	if err != nil {
		log.Printf("[DEDUP] redis unavailable, using in-memory deduper: %v", err)
	}

	sweep := sweeper.New(
		repository.NewPaymentRepository(db),
		repository.NewAnomalyRepository(db),
		cfg.Sweeper.MaxPendingAge,
	)
	cronJobs := sweeper.Start(sweep, cfg.Sweeper.Interval)
	defer cronJobs.Stop()

	engine := router.Setup(cfg, db, provider, deduper)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
