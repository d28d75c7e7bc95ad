package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/api"
	"github.com/siftlabs/sift/internal/bus"
	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/extract"
	"github.com/siftlabs/sift/internal/ingest"
	"github.com/siftlabs/sift/internal/processor"
	"github.com/siftlabs/sift/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the extraction service (NATS consumer + HTTP API)",
	RunE:  serve,
}

func serve(cmd *cobra.Command, args []string) error {
	svc := config.LoadService()
	setupLogging(svc.LogLevel)

	slog.Info("sift starting", "port", svc.Port)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.LoadExtraction(svc.ConfigPath)
	if err != nil {
		return fmt.Errorf("load extraction config: %w", err)
	}

	if svc.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	db, err := store.New(ctx, svc.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	slog.Info("database connected")

	busClient, err := bus.NewClient(svc.NatsURL, svc.NatsToken, slog.Default())
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer busClient.Close()
	slog.Info("NATS connected", "url", svc.NatsURL)

	loader := ingest.NewLoader(cfg.IngestOptions(), slog.Default())
	orch := extract.NewOrchestrator(cfg.ExtractConfig(), cfg.Workers, slog.Default())

	proc := processor.New(db, busClient, loader, orch, slog.Default())
	if err := busClient.Subscribe(bus.SubjectBatchStored, proc.HandleBatchStored); err != nil {
		return fmt.Errorf("subscribe to batch events: %w", err)
	}

	srv := api.NewServer(svc.Port, db, loader, orch, cfg.ExtractConfig())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("sift ready", "port", svc.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("sift stopped")
	return nil
}
