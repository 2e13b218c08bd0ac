package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gorilla/mux"

	"github.com/Rehodra/AI-Youtube-Analyser/api/rest/routes"
	"github.com/Rehodra/AI-Youtube-Analyser/config"
	"github.com/Rehodra/AI-Youtube-Analyser/core/analysis"
	"github.com/Rehodra/AI-Youtube-Analyser/core/orchestrator"
	"github.com/Rehodra/AI-Youtube-Analyser/core/repository"
	"github.com/Rehodra/AI-Youtube-Analyser/delivery"
	"github.com/Rehodra/AI-Youtube-Analyser/providers/openai"
	"github.com/Rehodra/AI-Youtube-Analyser/providers/youtube"
	"github.com/Rehodra/AI-Youtube-Analyser/storage"
)

func main() {
	cfg := config.Load()

	// Initialize storage
	var store repository.Store
	var events repository.EventSource
	if cfg.DatabaseURL != "" {
		db, err := repository.NewDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Database connected successfully")

		store = repository.NewJobRepository(db)
		events = repository.NewEventRepository(db)
	} else {
		log.Println("DATABASE_URL not set, using in-memory store")
		memory := repository.NewMemoryStore()
		store = memory
		events = memory
	}

	// Initialize providers
	youtubeClient, err := youtube.NewClient(cfg.YouTubeAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize YouTube client: %v", err)
	}
	openaiClient, err := openai.NewClient(cfg.OpenAIAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize OpenAI client: %v", err)
	}

	// Load per-module settings
	modulesCfg, err := config.LoadModulesConfig(cfg.ModulesConfigPath)
	if err != nil {
		log.Fatalf("Failed to load module settings: %v", err)
	}

	// Initialize orchestration
	registry := analysis.NewRegistry(openaiClient, modulesCfg)
	lifecycle := orchestrator.NewLifecycle(store)
	coordinator := orchestrator.NewCoordinator(
		store, registry, youtubeClient, lifecycle,
		cfg.MaxModulesInFlight, modulesCfg.MetadataTimeout,
	)
	engine := orchestrator.NewEngine(store, coordinator, lifecycle, cfg.MaxRunningJobs, cfg.QueueCapacity)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx)

	// Initialize delivery
	exporter := buildExporter(ctx, cfg)
	var sender delivery.EmailSender
	if cfg.SMTPFrom != "" {
		port, _ := strconv.Atoi(cfg.SMTPPort)
		sender = delivery.NewSMTPSender(cfg.SMTPHost, port, cfg.SMTPFrom, cfg.SMTPPassword)
	} else {
		log.Println("SMTP_FROM not set, email notifications disabled")
	}
	dispatcher := delivery.NewDispatcher(store, exporter, sender)
	go dispatcher.Start(ctx)

	// Setup routes
	r := mux.NewRouter()
	routes.SetupRoutes(r, engine, events, cfg.JWTSecret)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := server.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

func buildExporter(ctx context.Context, cfg *config.Config) storage.ReportExporter {
	if cfg.ReportBucket != "" {
		exporter, err := storage.NewS3Exporter(ctx, cfg.AWSRegion, cfg.ReportBucket)
		if err != nil {
			log.Fatalf("Failed to initialize S3 exporter: %v", err)
		}
		return exporter
	}
	log.Printf("REPORT_BUCKET not set, writing reports to %s/", cfg.ReportDir)
	return storage.NewLocalExporter(cfg.ReportDir)
}
