package extract

import "github.com/siftlabs/sift/internal/conversation"

// MessageCount counts messages by canonical role.
type MessageCount struct{}

func (MessageCount) Name() string { return "message_count" }

func (MessageCount) Extract(conv *conversation.Conversation) (any, error) {
	var user, assistant int
	for _, m := range conv.Messages {
		switch m.Canon {
		case conversation.RoleUser:
			user++
		case conversation.RoleAssistant:
			assistant++
		}
	}
	return map[string]int{
		"total":     len(conv.Messages),
		"user":      user,
		"assistant": assistant,
	}, nil
}
