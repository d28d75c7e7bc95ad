package conversation

import "strings"

// Role is the canonical speaker role. Source data is inconsistent about
// where the role lives (role vs sender_name) and how it is cased, so every
// message is resolved to one of these before extraction.
type Role int

const (
	RoleUnknown Role = iota
	RoleUser
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// CanonicalRole resolves a message's speaker. The role field wins when it
// carries a recognizable value; sender_name is the fallback.
func CanonicalRole(m Message) Role {
	if r := parseRole(m.Role); r != RoleUnknown {
		return r
	}
	return parseRole(m.SenderName)
}

func parseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "human":
		return RoleUser
	case "assistant", "bot", "agent":
		return RoleAssistant
	default:
		return RoleUnknown
	}
}
