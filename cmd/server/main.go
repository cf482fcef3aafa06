package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/api"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/config"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/database"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/repository"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/scheduler"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/secrets"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Annotation encryption key. Without a configured key a random one is
	// used, so stored annotations do not survive a restart.
	var encryptor *secrets.Encryptor
	if cfg.Secrets.FernetKey != "" {
		encryptor, err = secrets.NewEncryptor(cfg.Secrets.FernetKey)
		if err != nil {
			log.Fatalf("Failed to load annotation encryption key: %v", err)
		}
	} else {
		encryptor, err = secrets.NewRandomEncryptor()
		if err != nil {
			log.Fatalf("Failed to generate annotation encryption key: %v", err)
		}
		log.Println("Warning: FERNET_KEY not set, annotations will be unreadable after restart")
	}

	// Create repositories
	sourceRepo := repository.NewSourceRepository(db)
	resultRepo := repository.NewResultRepository(db)
	annotationRepo := repository.NewAnnotationRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	sourceService := service.NewSourceService(sourceRepo)
	annotationService := service.NewAnnotationService(annotationRepo, encryptor)
	reconService := service.NewReconciliationService(
		sourceRepo,
		resultRepo,
		annotationService,
		cfg.Thresholds,
		cfg.LargeDeals,
	)

	// Start the reconciliation sweep scheduler
	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg.Scheduler.Spec, reconService)
		if err != nil {
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
		log.Printf("Scheduler started with spec %q", cfg.Scheduler.Spec)
	}

	// Create router
	router := api.NewRouter(systemService, sourceService, reconService, annotationService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
