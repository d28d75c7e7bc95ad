// Package conversation defines the normalized chat schema every extractor
// consumes: a Conversation of ordered Messages plus optional participant and
// timing metadata.
package conversation

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is a single utterance. Timestamps are optional and may arrive as
// epoch milliseconds, an ISO-8601 string, or both.
type Message struct {
	Role        string `json:"role,omitempty"`
	Content     string `json:"content"`
	TimestampMS *int64 `json:"timestamp_ms,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	SenderID    string `json:"sender_id,omitempty"`
	SenderName  string `json:"sender_name,omitempty"`

	// Canon is the canonical role attached by Normalized. Extractors read
	// this field only; the raw Role/SenderName strings are source artifacts.
	Canon Role `json:"-"`
}

// Participant identifies one party in a conversation. Source data encodes
// participants either as bare strings or as {id, role} records.
type Participant struct {
	ID   string `json:"id"`
	Role string `json:"role,omitempty"`
}

// UnmarshalJSON accepts both the string and the record form.
func (p *Participant) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.ID = s
		p.Role = ""
		return nil
	}

	type record Participant
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("parse participant: %w", err)
	}
	*p = Participant(rec)
	return nil
}

// Conversation is one chat session in the standard schema. Message order is
// insertion order and treated as chronological; nothing re-sorts it.
type Conversation struct {
	ID            string        `json:"conversation_id,omitempty"`
	Messages      []Message     `json:"conversation"`
	CreatedAt     string        `json:"created_at,omitempty"`
	LastMessageAt string        `json:"last_message_at,omitempty"`
	Participants  []Participant `json:"participants,omitempty"`
}

// Normalized returns a copy of the conversation with the canonical role
// attached to every message. The receiver is not modified.
func (c Conversation) Normalized() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	for i := range out.Messages {
		out.Messages[i].Canon = CanonicalRole(out.Messages[i])
	}
	return out
}

// CreatedTime parses the conversation-level created_at timestamp.
func (c Conversation) CreatedTime() (time.Time, bool) {
	return ParseISOTime(c.CreatedAt)
}

// Time returns the message timestamp derived from timestamp_ms.
// A zero or absent timestamp_ms reports false.
func (m Message) Time() (time.Time, bool) {
	if m.TimestampMS == nil || *m.TimestampMS == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(*m.TimestampMS).UTC(), true
}

// CreatedTime parses the message-level created_at timestamp.
func (m Message) CreatedTime() (time.Time, bool) {
	return ParseISOTime(m.CreatedAt)
}

// ParseISOTime parses an ISO-8601 timestamp, tolerating both a trailing Z and
// a missing zone designator (naive timestamps are read as UTC).
func ParseISOTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
