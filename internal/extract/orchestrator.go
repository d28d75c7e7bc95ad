package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/siftlabs/sift/internal/conversation"
)

// Orchestrator runs the enabled extractors over a batch of conversations.
// Work is partitioned across workers, each with its own extractor instances;
// a single extraction failing (error or panic) drops that one key and nothing
// else. When the context expires mid-batch the conversations already
// processed are returned as a partial result.
type Orchestrator struct {
	cfg     Config
	workers int
	logger  *slog.Logger
}

const defaultWorkers = 4

func NewOrchestrator(cfg Config, workers int, logger *slog.Logger) *Orchestrator {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Orchestrator{cfg: cfg, workers: workers, logger: logger}
}

// conversationResult is one conversation's extraction output, merged into the
// batch result by Run.
type conversationResult struct {
	id       string
	features map[string]any
	targets  map[string]TargetValue
	failures []Failure
}

// Run extracts features and targets from every conversation. An empty batch
// yields an empty result; every processed conversation gets an entry in both
// maps even when all of its extractions failed.
func (o *Orchestrator) Run(ctx context.Context, convs []conversation.Conversation) *Result {
	result := NewResult()
	if len(convs) == 0 {
		o.logger.Warn("no conversations to extract from")
		return result
	}

	o.logger.Info("starting extraction",
		"conversations", len(convs),
		"workers", o.workers,
	)

	type job struct {
		idx  int
		conv conversation.Conversation
	}

	jobs := make(chan job)
	results := make(chan conversationResult)

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Per-worker instances: extractors share no state across
			// goroutines.
			registry := NewRegistry(o.cfg, o.logger)
			for j := range jobs {
				results <- o.extractOne(registry, j.conv, j.idx)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, conv := range convs {
			select {
			case jobs <- job{idx: i, conv: conv}:
			case <-ctx.Done():
				o.logger.Warn("extraction deadline hit, returning partial results",
					"dispatched", i,
					"total", len(convs),
				)
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		result.Features[r.id] = r.features
		result.Targets[r.id] = r.targets
		result.Failures = append(result.Failures, r.failures...)
	}

	o.logger.Info("extraction complete",
		"conversations", len(result.Features),
		"failures", len(result.Failures),
	)
	return result
}

func (o *Orchestrator) extractOne(registry *Registry, conv conversation.Conversation, idx int) conversationResult {
	id := ConversationID(&conv, idx)
	normalized := conv.Normalized()

	out := conversationResult{
		id:       id,
		features: make(map[string]any),
		targets:  make(map[string]TargetValue),
	}

	for _, ext := range registry.Features() {
		value, err := safeExtract(ext, &normalized)
		if err != nil {
			o.logger.Error("feature extraction failed",
				"conversation_id", id,
				"feature", ext.Name(),
				"error", err,
			)
			out.failures = append(out.failures, Failure{
				ConversationID: id,
				Extractor:      ext.Name(),
				Kind:           KindFeature,
				Err:            err.Error(),
			})
			continue
		}
		out.features[ext.Name()] = value
	}

	for _, ext := range registry.Targets() {
		value, err := safeExtract(ext, &normalized)
		if err != nil {
			o.logger.Error("target extraction failed",
				"conversation_id", id,
				"target", ext.Name(),
				"error", err,
			)
			out.failures = append(out.failures, Failure{
				ConversationID: id,
				Extractor:      ext.Name(),
				Kind:           KindTarget,
				Err:            err.Error(),
			})
			continue
		}
		out.targets[ext.Name()] = TargetValue{Metric: ext.Name(), Value: value}
	}

	return out
}

// safeExtract converts a panicking extractor into an ordinary error so a bad
// input can never take down the batch.
func safeExtract(ext Extractor, conv *conversation.Conversation) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor panic: %v", r)
		}
	}()
	return ext.Extract(conv)
}
