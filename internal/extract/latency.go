package extract

import (
	"fmt"

	"github.com/siftlabs/sift/internal/conversation"
)

// AvgLatency is the mean time for the assistant to answer a user message,
// in seconds. 0 when no timed user→assistant transition exists.
type AvgLatency struct{}

func (AvgLatency) Name() string { return "avg_latency" }

func (AvgLatency) Extract(conv *conversation.Conversation) (any, error) {
	times := latencies(conv.Messages, 0)
	return mean(times), nil
}

// InitialNLatency is the mean latency across the first N assistant responses,
// a signal of early-conversation responsiveness. The configured window size
// is part of the feature name.
type InitialNLatency struct {
	n int
}

func NewInitialNLatency(cfg Config) InitialNLatency {
	return InitialNLatency{n: cfg.initialLatencyResponses()}
}

func (e InitialNLatency) Name() string {
	return fmt.Sprintf("initial_%d_latency", e.n)
}

func (e InitialNLatency) Extract(conv *conversation.Conversation) (any, error) {
	times := latencies(conv.Messages, e.n)
	return mean(times), nil
}

// latencies collects user→assistant response times in seconds. A positive
// limit stops the scan once that many transitions have been found.
func latencies(msgs []conversation.Message, limit int) []float64 {
	var times []float64
	for i := 1; i < len(msgs); i++ {
		if limit > 0 && len(times) >= limit {
			break
		}
		prev, curr := msgs[i-1], msgs[i]
		if prev.TimestampMS == nil || curr.TimestampMS == nil {
			continue
		}
		if prev.Canon == conversation.RoleUser && curr.Canon == conversation.RoleAssistant {
			times = append(times, float64(*curr.TimestampMS-*prev.TimestampMS)/1000.0)
		}
	}
	return times
}
