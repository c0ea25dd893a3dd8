package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/coreybb/mailcraft/api"
	"github.com/coreybb/mailcraft/config"
	"github.com/coreybb/mailcraft/conversion"
	"github.com/coreybb/mailcraft/datastore"
	"github.com/coreybb/mailcraft/delivery"
	"github.com/coreybb/mailcraft/processing"
	rh "github.com/coreybb/mailcraft/route-handlers"
	"github.com/coreybb/mailcraft/storage"
	_ "github.com/lib/pq"
)

const (
	dbPingTimeout    = 5 * time.Second
	migrationTimeout = 30 * time.Second
	outboxSubDir     = "outbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	slog.Info("Starting mailcraft", "config", cfg.String())

	db, err := setupDatabase(cfg)
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), migrationTimeout)
	err = datastore.Migrate(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	templateRepo := datastore.NewTemplateRepository(db)
	projectRepo := datastore.NewProjectRepository(db)
	profileRepo := datastore.NewProfileRepository(db)
	testSendRepo := datastore.NewTestSendRepository(db)

	exportProcessor := processing.NewExportProcessor(
		templateRepo,
		conversion.NewConverter(),
		storage.NewLocalFileStorer(cfg.ExportDir),
	)

	testSendService := delivery.NewTestSendService(testSendRepo, newEmailProvider(cfg))

	router := api.SetupRoutes(api.Handlers{
		Templates: rh.NewTemplateHandler(templateRepo, profileRepo),
		Blocks:    rh.NewBlockHandler(templateRepo),
		Exports:   rh.NewExportHandler(templateRepo, exportProcessor, testSendService),
		Projects:  rh.NewProjectHandler(projectRepo, templateRepo, profileRepo),
		Gallery:   rh.NewGalleryHandler(templateRepo, profileRepo),
		Profiles:  rh.NewProfileHandler(profileRepo),
	}, cfg.RequestTimeout)

	startServer(cfg.Port, router, cfg.ShutdownTimeout)
}

// newEmailProvider selects Postmark when it is configured and the local
// outbox otherwise.
func newEmailProvider(cfg config.Config) delivery.EmailProvider {
	if cfg.PostmarkEnabled() {
		provider, err := delivery.NewPostmarkProvider(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.SenderEmail)
		if err != nil {
			log.Fatalf("Email provider setup failed: %v", err)
		}
		return provider
	}
	outbox := filepath.Join(cfg.ExportDir, outboxSubDir)
	log.Printf("WARNING: POSTMARK_SERVER_TOKEN not set. Test sends will be written to %s.", outbox)
	return delivery.NewOutboxProvider(outbox, cfg.SenderEmail)
}

func setupDatabase(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection successful")
	return db, nil
}

func startServer(port string, router http.Handler, shutdownTimeout time.Duration) {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownSignal
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
