package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bravo-deck-backend/config"
	"bravo-deck-backend/internal/api"
	"bravo-deck-backend/internal/db"
	"bravo-deck-backend/internal/deck"
	"bravo-deck-backend/internal/driver"
	"bravo-deck-backend/internal/notification"
	"bravo-deck-backend/internal/store"
	"bravo-deck-backend/internal/visualizer"

	"github.com/SherClockHolmes/webpush-go"
)

func main() {
	logger := log.New(os.Stdout, "deck-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Push alerts are optional; without VAPID keys the notification pool and
	// the subscription endpoints stay dormant.
	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("Warning: VAPID keys not configured, push alerts disabled")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	if err := appStore.SeedTemplates(ctx); err != nil {
		logger.Fatalf("failed to seed labware templates: %v", err)
	}
	logger.Println("labware catalog initialized")

	state := deck.New(cfg.Deck.NumNests)
	sim := driver.NewSimulator(state, "bravo")

	hub := visualizer.NewHub(state)
	go hub.Run(ctx)
	state.AddListener(hub)

	if webpushOptions != nil {
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
		state.AddListener(pool)
	}

	router := api.NewRouter(state, sim, appStore, hub, webpushOptions, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
