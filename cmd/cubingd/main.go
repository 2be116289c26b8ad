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

	"github.com/SherClockHolmes/webpush-go"

	"pallet-cubing-backend/config"
	"pallet-cubing-backend/internal/api"
	"pallet-cubing-backend/internal/db"
	"pallet-cubing-backend/internal/export"
	"pallet-cubing-backend/internal/session"
	"pallet-cubing-backend/internal/share"
	"pallet-cubing-backend/internal/store"
	"pallet-cubing-backend/internal/workflow"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "cubingd ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Printf("database initialized (%s)", cfg.Database.Driver)

	records := store.NewGormStore(gormDB)
	subs := store.NewGormSubscriptionStore(gormDB)

	sess, err := session.Open(cfg.Session, gormDB)
	if err != nil {
		logger.Fatalf("failed to open session store: %v", err)
	}
	logger.Printf("session store opened (%s)", cfg.Session.Backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Push is optional; without VAPID keys exports are only logged.
	var sharer share.Sharer = share.LogSharer{}
	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		sharer = share.NewWebPushSharer(subs, webpushOptions)
		logger.Println("web push sharing enabled")
	} else {
		logger.Println("VAPID keys not configured; export notifications disabled")
	}

	exports := export.NewRunner(cfg.Export.WorkerPoolSize, records, sharer, cfg.Export.Dir, cfg.Export.Timeout)
	exports.Start(ctx)

	controller := workflow.NewController(sess, records, exports, workflow.Options{
		SaveGuardTTL:       cfg.Workflow.SaveGuardTTL,
		SummaryVisiblePros: cfg.Workflow.SummaryVisiblePros,
	})

	router := api.NewRouter(cfg.Server, controller, subs, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}
	cancel()

	if err := sess.Close(); err != nil {
		logger.Printf("failed to close session store: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
