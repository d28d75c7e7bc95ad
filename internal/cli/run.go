package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/extract"
	"github.com/siftlabs/sift/internal/ingest"
)

var (
	runConfigPath string
	runInputPath  string
	runOutputPath string
	runWorkers    int
	runTimeout    time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run extraction over a file or directory of conversation JSON",
	RunE:  runBatch,
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "extraction config YAML (optional)")
	runCmd.Flags().StringVarP(&runInputPath, "input", "i", "", "conversation JSON file or directory (required)")
	runCmd.Flags().StringVarP(&runOutputPath, "output", "o", "features_targets.json", "output JSON path")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "worker count override")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "abort with partial results after this long")
	_ = runCmd.MarkFlagRequired("input")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadExtraction(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	workers := cfg.Workers
	if runWorkers > 0 {
		workers = runWorkers
	}

	loader := ingest.NewLoader(cfg.IngestOptions(), slog.Default())
	convs, err := loader.LoadPath(runInputPath)
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}

	ctx := cmd.Context()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	orch := extract.NewOrchestrator(cfg.ExtractConfig(), workers, slog.Default())
	result := orch.Run(ctx, convs)

	for _, f := range result.Failures {
		slog.Warn("extraction failure",
			"conversation_id", f.ConversationID,
			"extractor", f.Extractor,
			"kind", string(f.Kind),
			"error", f.Err,
		)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(runOutputPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	slog.Info("extraction written",
		"output", runOutputPath,
		"conversations", len(result.Features),
		"failures", len(result.Failures),
	)
	return nil
}
