// Package processor ties the service pipeline together: a stored batch event
// comes in over the bus, conversations are normalized and run through the
// extraction engine, results are persisted, and a completion event goes out.
package processor

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/siftlabs/sift/internal/bus"
	"github.com/siftlabs/sift/internal/extract"
	"github.com/siftlabs/sift/internal/ingest"
	"github.com/siftlabs/sift/internal/store"
)

type Processor struct {
	store  *store.Store
	bus    *bus.Client
	loader *ingest.Loader
	orch   *extract.Orchestrator
	logger *slog.Logger
}

func New(s *store.Store, b *bus.Client, loader *ingest.Loader, orch *extract.Orchestrator, logger *slog.Logger) *Processor {
	return &Processor{
		store:  s,
		bus:    b,
		loader: loader,
		orch:   orch,
		logger: logger,
	}
}

// HandleBatchStored is the bus handler for sift.conversations.stored.
// Every failure below extraction granularity is already isolated inside the
// orchestrator; failures at this level (bad payload, storage down) abort
// only this batch.
func (p *Processor) HandleBatchStored(subject string, data []byte) {
	ctx := context.Background()

	var evt bus.BatchStoredEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse batch event", "error", err)
		return
	}

	p.logger.Info("processing batch",
		"batch_id", evt.BatchID,
		"source", evt.Source,
		"conversations", len(evt.Conversations),
	)

	convs := p.loader.Normalize(evt.Conversations)
	if len(convs) == 0 {
		p.logger.Warn("batch contained no usable conversations", "batch_id", evt.BatchID)
		return
	}

	runID := uuid.New()
	if err := p.store.CreateRun(ctx, runID, evt.BatchID, evt.Source, len(convs)); err != nil {
		p.logger.Error("failed to create run", "batch_id", evt.BatchID, "error", err)
		return
	}

	result := p.orch.Run(ctx, convs)

	if err := p.store.WriteResult(ctx, runID, result); err != nil {
		p.logger.Error("failed to persist result", "run_id", runID, "error", err)
		return
	}

	features, targets := countValues(result)
	if err := p.store.CompleteRun(ctx, runID, features, targets, len(result.Failures)); err != nil {
		p.logger.Error("failed to complete run", "run_id", runID, "error", err)
	}

	if err := p.bus.Publish(bus.SubjectRunCompleted, bus.RunCompletedEvent{
		RunID:         runID.String(),
		BatchID:       evt.BatchID,
		Conversations: len(convs),
		Features:      features,
		Targets:       targets,
		Failures:      len(result.Failures),
	}); err != nil {
		p.logger.Error("failed to publish run completed", "run_id", runID, "error", err)
	}

	p.logger.Info("batch processed",
		"run_id", runID,
		"batch_id", evt.BatchID,
		"features", features,
		"targets", targets,
		"failures", len(result.Failures),
	)
}

func countValues(result *extract.Result) (features, targets int) {
	for _, m := range result.Features {
		features += len(m)
	}
	for _, m := range result.Targets {
		targets += len(m)
	}
	return features, targets
}
