package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siftlabs/sift/internal/conversation"
)

func TestResponseRate(t *testing.T) {
	tests := []struct {
		name string
		conv conversation.Conversation
		want float64
	}{
		{
			name: "every user message answered",
			conv: msgs("User", "hi", "Assistant", "hello", "User", "how?", "Assistant", "like so"),
			want: 1.0,
		},
		{
			name: "trailing user message unanswered",
			conv: msgs("User", "hi", "Assistant", "hello", "User", "still there?"),
			want: 0.5,
		},
		{
			name: "no user messages",
			conv: msgs("Assistant", "welcome"),
			want: 0.0,
		},
		{
			name: "empty conversation",
			conv: conversation.Conversation{},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := ResponseRate{}.Extract(norm(tt.conv))
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			assert.InDelta(t, tt.want, value.(float64), 1e-9)
		})
	}
}

func TestUserReplyRate(t *testing.T) {
	// Assistant prompts twice, user replies once, and the final assistant
	// message goes unanswered.
	conv := msgs(
		"Assistant", "can I help?",
		"User", "yes please",
		"Assistant", "anything else?",
	)
	value, err := UserReplyRate{}.Extract(norm(conv))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	assert.InDelta(t, 0.5, value.(float64), 1e-9)
}

func TestConversationDuration(t *testing.T) {
	conv := conversation.Conversation{Messages: []conversation.Message{
		{Role: "User", TimestampMS: ts(0)},
		{Role: "Assistant", TimestampMS: ts(90_000)},
	}}
	value, err := ConversationDuration{}.Extract(norm(conv))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	assert.InDelta(t, 1.5, value.(float64), 1e-9)
}

func TestConversationDurationMissingTimestamps(t *testing.T) {
	value, err := ConversationDuration{}.Extract(norm(msgs("User", "hi", "Assistant", "hello")))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	assert.Zero(t, value.(float64))
}
