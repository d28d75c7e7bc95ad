package conversation

import "strings"

// TransferRules reassigns speaker roles based on message content. Some chat
// exports attribute relayed user text to the assistant account (and vice
// versa); a substring hit on the configured patterns moves the message to the
// other side.
type TransferRules struct {
	AssistantToUser []string
	UserToAssistant []string
}

// Empty reports whether no patterns are configured.
func (r TransferRules) Empty() bool {
	return len(r.AssistantToUser) == 0 && len(r.UserToAssistant) == 0
}

// Apply returns the messages with roles transferred and empty-content
// messages dropped. The input slice is not modified.
func (r TransferRules) Apply(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		role := CanonicalRole(m)
		switch {
		case role == RoleAssistant && containsAny(m.Content, r.AssistantToUser):
			m.Role = "User"
		case role == RoleUser && containsAny(m.Content, r.UserToAssistant):
			m.Role = "Assistant"
		}
		out = append(out, m)
	}
	return out
}

func containsAny(content string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(content, p) {
			return true
		}
	}
	return false
}
