// Package main provides the text toner API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"texttoner/internal/api"
	"texttoner/internal/auth"
	"texttoner/internal/config"
	"texttoner/internal/database"
	"texttoner/internal/llm"
	"texttoner/internal/tone"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "Run migrations and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	// Run migrations
	log.Info("running database migrations")
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations complete")

	if *migrateOnly {
		return
	}

	// Connect to database
	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Create model backend and tone engine
	backend, err := llm.New(llm.Config{
		Provider: llm.Provider(cfg.LLMProvider),
		Model:    cfg.LLMModel,
		APIKey:   backendAPIKey(cfg),
	})
	if err != nil {
		log.Error("failed to create model backend", "error", err)
		os.Exit(1)
	}

	engine := tone.NewEngine(backend, tone.Config{
		MaxTextLength: cfg.MaxTextLength,
		InferTimeout:  cfg.InferTimeout,
		MaxConcurrent: cfg.MaxConcurrentInferences,
	}, log)

	if cfg.PreloadModel {
		// A failed preload is not fatal; the engine retries on first use.
		if err := engine.EnsureLoaded(ctx); err != nil {
			log.Warn("model preload failed, will retry on first request", "error", err)
		}
	}

	// Create API server
	server := api.NewServer(api.Config{
		DB:           db,
		Tokens:       auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Engine:       engine,
		AnalyzeRate:  cfg.AnalyzeRate,
		AnalyzeBurst: cfg.AnalyzeBurst,
		Logger:       log,
	})

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("starting server", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

func backendAPIKey(cfg config.Config) string {
	if llm.Provider(cfg.LLMProvider) == llm.ProviderOpenAI {
		return cfg.OpenAIAPIKey
	}
	return cfg.HFAPIToken
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
