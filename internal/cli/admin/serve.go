package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/hrdesk/internal/api/handlers"
	"github.com/cloo-solutions/hrdesk/internal/jobs"
	"github.com/cloo-solutions/hrdesk/internal/server"
	"github.com/cloo-solutions/hrdesk/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the hrdesk API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	app, err := NewApp(ctx, !noMigrate)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.Config
	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	// Recover documents a crashed process left stuck in processing
	reaper := jobs.NewStaleDocumentReaper(app.DocRepo, 15*time.Minute)
	reaperWorker := jobs.NewWorker(reaper, time.Minute)
	go reaperWorker.Start(ctx)
	log.Println("stale document reaper started")

	const maxUploadBytes int64 = 32 * 1024 * 1024

	documentHandler := handlers.NewDocumentHandler(app.Ingest, app.Documents, maxUploadBytes)
	queryHandler := handlers.NewQueryHandler(app.QA)
	healthHandler := handlers.NewHealthHandler(app.DocRepo)

	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: documentHandler,
		QueryHandler:    queryHandler,
		HealthHandler:   healthHandler,
		MaxBodyBytes:    maxUploadBytes,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	reaperWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
