package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safetrip/travel-circle/internal/app"
	"github.com/safetrip/travel-circle/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	natsURL := cfg.NATS.URL
	if !cfg.NATS.Enabled() {
		natsURL = "(disabled)"
	}

	log.Printf("Travel circle API starting")
	log.Printf("  listen_addr:      %s", cfg.ListenAddr)
	log.Printf("  store_backend:    %s", cfg.StoreBackend)
	switch cfg.StoreBackend {
	case config.BackendBolt:
		log.Printf("  bolt_path:        %s", cfg.BoltPath)
	case config.BackendRedis:
		log.Printf("  redis_addr:       %s", cfg.RedisAddr)
	case config.BackendPostgres:
		log.Printf("  database_url:     (set)")
	}
	log.Printf("  candidate_source: %s", cfg.CandidateSource)
	log.Printf("  same_destination: %v", cfg.SameDestination)
	log.Printf("  rate_limit:       %v", cfg.RateLimit)
	log.Printf("  nats_url:         %s", natsURL)
	log.Printf("  user:             %s (%s)", cfg.UserName, cfg.UserID)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, initiating graceful shutdown...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.Close()
		log.Fatalf("server error: %v", err)
	}
	if err := a.Close(); err != nil {
		log.Printf("close error: %v", err)
	}
	log.Println("Travel circle API stopped")
}
