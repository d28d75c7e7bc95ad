package extract

import (
	"github.com/siftlabs/sift/internal/conversation"
)

// ts returns a pointer to a millisecond timestamp, for message literals.
func ts(v int64) *int64 { return &v }

// norm normalizes a conversation the way the orchestrator does before
// handing it to an extractor.
func norm(c conversation.Conversation) *conversation.Conversation {
	n := c.Normalized()
	return &n
}

// msgs builds a conversation from role/content pairs without timestamps.
func msgs(pairs ...string) conversation.Conversation {
	var c conversation.Conversation
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Messages = append(c.Messages, conversation.Message{Role: pairs[i], Content: pairs[i+1]})
	}
	return c
}
