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

	"github.com/careops/equiptrack/internal/ai"
	"github.com/careops/equiptrack/internal/config"
	"github.com/careops/equiptrack/internal/database"
	"github.com/careops/equiptrack/internal/handlers"
	"github.com/careops/equiptrack/internal/store"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema (Critical for Zero-Config)
	log.Println("🚀 Synchronizing database schema...")
	if err := db.Migrate(); err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	stores := store.NewGormStores(db.DB)

	// 4. Chatbot client (optional: server runs without credentials)
	chatClient, err := ai.New(context.Background(), cfg.Chat)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			log.Println("⚠️ Chatbot: no LLM credentials configured, chatbot endpoints disabled")
		} else {
			log.Printf("⚠️ Chatbot: init failed: %v", err)
		}
		chatClient = nil
	} else {
		log.Printf("✅ Chatbot: using %s", chatClient.Name())
	}

	// 5. Set up HTTP router
	router := handlers.NewRouter(stores,
		handlers.WithChat(chatClient, cfg.Chat.Fallback),
		handlers.WithHealthCheck(func() bool {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return false
			}
			return sqlDB.Ping() == nil
		}),
	)

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s [env: %s]\n", cfg.Port, cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	// Create context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if chatClient != nil {
		chatClient.Close()
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
