// Package extract computes per-conversation analytical features and
// supervised-learning targets. Each extractor is a pure function of a single
// conversation; the orchestrator fans a batch out across workers and folds
// the values into one result keyed by conversation id.
package extract

import (
	"fmt"

	"github.com/siftlabs/sift/internal/conversation"
)

// Extractor computes one named value from a conversation. Implementations
// must be read-only over their input and must not keep state between calls.
type Extractor interface {
	Name() string
	Extract(conv *conversation.Conversation) (any, error)
}

// Kind distinguishes descriptive features from label-like targets.
type Kind string

const (
	KindFeature Kind = "feature"
	KindTarget  Kind = "target"
)

// Config carries the extraction settings the extractors and registry consume.
type Config struct {
	// EnabledFeatures and EnabledTargets are allow-lists of extractor names.
	// An empty list enables everything.
	EnabledFeatures []string
	EnabledTargets  []string

	// InitialLatencyResponses is the window size N for the initial-N latency
	// feature. Zero means the default of 5.
	InitialLatencyResponses int
}

const defaultInitialLatencyResponses = 5

func (c Config) initialLatencyResponses() int {
	if c.InitialLatencyResponses > 0 {
		return c.InitialLatencyResponses
	}
	return defaultInitialLatencyResponses
}

// TargetValue wraps a target value with the metric name it was computed by.
type TargetValue struct {
	Metric string `json:"metric"`
	Value  any    `json:"value"`
}

// Failure records one extraction that did not produce a value. The
// corresponding key is absent from the result maps; nothing else about the
// run is affected.
type Failure struct {
	ConversationID string `json:"conversation_id"`
	Extractor      string `json:"extractor"`
	Kind           Kind   `json:"kind"`
	Err            string `json:"error"`
}

// Result is the assembled output of a batch run: conversation id → feature
// name → value, and conversation id → target name → wrapped value. Failures
// ride alongside for reporting and are not part of the persisted document.
type Result struct {
	Features map[string]map[string]any         `json:"features"`
	Targets  map[string]map[string]TargetValue `json:"targets"`
	Failures []Failure                         `json:"-"`
}

// NewResult returns an empty result with both maps allocated.
func NewResult() *Result {
	return &Result{
		Features: make(map[string]map[string]any),
		Targets:  make(map[string]map[string]TargetValue),
	}
}

// ConversationID returns the conversation's id, or the positional fallback
// conversation_{i} when the record carries none.
func ConversationID(conv *conversation.Conversation, idx int) string {
	if conv.ID != "" {
		return conv.ID
	}
	return fmt.Sprintf("conversation_%d", idx)
}
