package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"xr-archive/internal/archive"
	"xr-archive/internal/config"
	database "xr-archive/internal/db"
	"xr-archive/internal/session"
	"xr-archive/internal/storage"

	// Use an alias to prevent naming collisions with the 'server' variable
	apiserver "xr-archive/internal/api/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Archive Server...")

	// 1. Setup Configuration
	cfg := config.Load()
	setupLogging(cfg.Server.LogLevel)

	// 2. Vocabulary
	vocab := loadVocabulary(cfg)

	// 3. Initialize Infrastructure
	store := storage.New(cfg)
	defer store.Close()

	catalog, err := database.New()
	if err != nil {
		log.Fatalf("❌ Catalog unavailable: %v", err)
	}
	defer catalog.Close()
	if err := catalog.AutoMigrate(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	// 4. Session
	registry := session.NewRegistry(cfg.Archive.MediaPrefix)
	lib := session.NewLibrary(vocab, registry, catalog)

	// 5. Setup Metrics
	session.RegisterMetrics()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, mux); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 6. Start Server
	srv := apiserver.New(cfg, lib, store)
	go func() {
		log.Printf("🚀 Archive Server starting on %s", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			log.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Shutdown error: %v", err)
	}
	if n, err := lib.Release(ctx); err != nil {
		log.Printf("⚠️ Release error: %v", err)
	} else {
		log.Printf("🧹 Revoked %d object URLs", n)
	}
}

func loadVocabulary(cfg *config.Config) archive.Vocabulary {
	base := archive.DefaultVocabulary()
	if cfg.Archive.VocabularyFile != "" {
		v, err := archive.LoadVocabulary(cfg.Archive.VocabularyFile)
		if err != nil {
			log.Fatalf("❌ Vocabulary: %v", err)
		}
		base = v
		log.Printf("📖 Vocabulary loaded from %s", cfg.Archive.VocabularyFile)
	}

	// archive.mood_limit wins over the file
	vocab, err := archive.NewVocabulary(base.Instruments(), base.Gradients(), cfg.Archive.MoodLimit)
	if err != nil {
		log.Fatalf("❌ Vocabulary: %v", err)
	}
	return vocab
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
