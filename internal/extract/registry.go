package extract

import (
	"fmt"
	"log/slog"
)

// Constructor builds one extractor from the extraction config. It may fail
// (bad parameters); a failed constructor is logged and skipped, never fatal.
type Constructor func(cfg Config) (Extractor, error)

// The registration tables are the static replacement for runtime plugin
// scanning: every known extractor is listed here, in the deterministic order
// a run iterates them. Allow-list filtering happens against the constructed
// instance's Name(), since a parameterized extractor embeds its parameter in
// its name (initial_5_latency).
var featureTable = []Constructor{
	func(Config) (Extractor, error) { return MessageCount{}, nil },
	func(Config) (Extractor, error) { return ResponseTime{}, nil },
	func(Config) (Extractor, error) { return AvgLatency{}, nil },
	func(cfg Config) (Extractor, error) { return NewInitialNLatency(cfg), nil },
	func(Config) (Extractor, error) { return AggregateThroughput{}, nil },
	func(Config) (Extractor, error) { return Quality{}, nil },
}

var targetTable = []Constructor{
	func(Config) (Extractor, error) { return Sentiment{}, nil },
	func(Config) (Extractor, error) { return UserEngagement{}, nil },
	func(Config) (Extractor, error) { return DealMade{}, nil },
	func(Config) (Extractor, error) { return ResponseRate{}, nil },
	func(Config) (Extractor, error) { return UserReplyRate{}, nil },
	func(Config) (Extractor, error) { return ConversationDuration{}, nil },
}

// Registry holds the enabled extractor instances for one run.
type Registry struct {
	features []Extractor
	targets  []Extractor
}

// NewRegistry constructs every registered extractor and keeps the ones the
// allow-lists admit. A registry may end up empty; that is not an error.
func NewRegistry(cfg Config, logger *slog.Logger) *Registry {
	return &Registry{
		features: build(featureTable, cfg, cfg.EnabledFeatures, KindFeature, logger),
		targets:  build(targetTable, cfg, cfg.EnabledTargets, KindTarget, logger),
	}
}

func build(table []Constructor, cfg Config, enabled []string, kind Kind, logger *slog.Logger) []Extractor {
	var out []Extractor
	for _, construct := range table {
		ext, err := construct(cfg)
		if err != nil {
			logger.Warn("skipping extractor", "kind", string(kind), "error", err)
			continue
		}
		if len(enabled) > 0 && !contains(enabled, ext.Name()) {
			continue
		}
		out = append(out, ext)
	}
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Features returns the enabled feature extractors in registration order.
func (r *Registry) Features() []Extractor { return r.features }

// Targets returns the enabled target extractors in registration order.
func (r *Registry) Targets() []Extractor { return r.targets }

// Names lists the enabled extractor names, features first.
func (r *Registry) Names() []string {
	var names []string
	for _, e := range r.features {
		names = append(names, e.Name())
	}
	for _, e := range r.targets {
		names = append(names, e.Name())
	}
	return names
}

// KnownNames lists every registrable extractor name for the given config,
// ignoring allow-lists. Used by the API status endpoint.
func KnownNames(cfg Config) (features, targets []string, err error) {
	for _, construct := range featureTable {
		ext, cerr := construct(cfg)
		if cerr != nil {
			return nil, nil, fmt.Errorf("construct feature: %w", cerr)
		}
		features = append(features, ext.Name())
	}
	for _, construct := range targetTable {
		ext, cerr := construct(cfg)
		if cerr != nil {
			return nil, nil, fmt.Errorf("construct target: %w", cerr)
		}
		targets = append(targets, ext.Name())
	}
	return features, targets, nil
}
