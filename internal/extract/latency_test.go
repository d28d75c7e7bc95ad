package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siftlabs/sift/internal/conversation"
)

func TestAvgLatency(t *testing.T) {
	conv := conversation.Conversation{Messages: []conversation.Message{
		{Role: "User", Content: "I agree to the deal", TimestampMS: ts(0)},
		{Role: "Assistant", Content: "Great, payment confirmed, order shipped", TimestampMS: ts(5000)},
	}}

	value, err := AvgLatency{}.Extract(norm(conv))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	assert.InDelta(t, 5.0, value.(float64), 1e-9)
}

func TestAvgLatencyNoTransitions(t *testing.T) {
	conv := conversation.Conversation{Messages: []conversation.Message{
		{Role: "Assistant", Content: "welcome", TimestampMS: ts(0)},
		{Role: "Assistant", Content: "still here", TimestampMS: ts(1000)},
	}}

	value, err := AvgLatency{}.Extract(norm(conv))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	assert.Zero(t, value.(float64))
}

func TestInitialNLatency(t *testing.T) {
	// Four user→assistant transitions; only the first two should count.
	conv := conversation.Conversation{Messages: []conversation.Message{
		{Role: "User", TimestampMS: ts(0)},
		{Role: "Assistant", TimestampMS: ts(1000)},
		{Role: "User", TimestampMS: ts(2000)},
		{Role: "Assistant", TimestampMS: ts(5000)},
		{Role: "User", TimestampMS: ts(6000)},
		{Role: "Assistant", TimestampMS: ts(16_000)},
		{Role: "User", TimestampMS: ts(17_000)},
		{Role: "Assistant", TimestampMS: ts(37_000)},
	}}

	e := NewInitialNLatency(Config{InitialLatencyResponses: 2})
	if got := e.Name(); got != "initial_2_latency" {
		t.Fatalf("Name() = %q", got)
	}

	value, err := e.Extract(norm(conv))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	assert.InDelta(t, 2.0, value.(float64), 1e-9)
}

func TestInitialNLatencyDefaultWindow(t *testing.T) {
	e := NewInitialNLatency(Config{})
	if got := e.Name(); got != "initial_5_latency" {
		t.Fatalf("Name() = %q", got)
	}
}
