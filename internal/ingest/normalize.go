package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/siftlabs/sift/internal/conversation"
)

// normalizeItem maps one raw JSON item onto the standard schema. Recognized
// shapes, in order: the native schema (a "conversation" message list), an
// OpenAI-style "messages" list, a "dialog" list of alternating strings, and
// a flat {user, text} question/answer pair.
func normalizeItem(raw json.RawMessage) (*conversation.Conversation, error) {
	var native conversation.Conversation
	if err := json.Unmarshal(raw, &native); err == nil && len(native.Messages) > 0 {
		return &native, nil
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}

	if msgs, ok := generic["messages"]; ok {
		return fromMessageList(generic, msgs)
	}
	if dialog, ok := generic["dialog"]; ok {
		return fromDialog(generic, dialog)
	}
	if _, ok := generic["user"]; ok {
		return fromQAPair(generic)
	}
	return nil, fmt.Errorf("unrecognized conversation shape")
}

func fromMessageList(generic map[string]json.RawMessage, msgs json.RawMessage) (*conversation.Conversation, error) {
	var messages []conversation.Message
	if err := json.Unmarshal(msgs, &messages); err != nil {
		return nil, fmt.Errorf("parse messages list: %w", err)
	}
	conv := &conversation.Conversation{Messages: messages}
	fillMetadata(conv, generic)
	return conv, nil
}

// fromDialog maps a plain list of utterance strings onto alternating
// user/assistant turns.
func fromDialog(generic map[string]json.RawMessage, dialog json.RawMessage) (*conversation.Conversation, error) {
	var turns []string
	if err := json.Unmarshal(dialog, &turns); err != nil {
		return nil, fmt.Errorf("parse dialog list: %w", err)
	}
	conv := &conversation.Conversation{}
	for i, text := range turns {
		role := "User"
		if i%2 == 1 {
			role = "Assistant"
		}
		conv.Messages = append(conv.Messages, conversation.Message{Role: role, Content: text})
	}
	fillMetadata(conv, generic)
	return conv, nil
}

func fromQAPair(generic map[string]json.RawMessage) (*conversation.Conversation, error) {
	var question, answer string
	if raw, ok := generic["user"]; ok {
		if err := json.Unmarshal(raw, &question); err != nil {
			return nil, fmt.Errorf("parse user field: %w", err)
		}
	}
	if raw, ok := generic["text"]; ok {
		if err := json.Unmarshal(raw, &answer); err != nil {
			return nil, fmt.Errorf("parse text field: %w", err)
		}
	}
	if question == "" && answer == "" {
		return nil, fmt.Errorf("empty question/answer pair")
	}

	conv := &conversation.Conversation{}
	if question != "" {
		conv.Messages = append(conv.Messages, conversation.Message{Role: "User", Content: question})
	}
	if answer != "" {
		conv.Messages = append(conv.Messages, conversation.Message{Role: "Assistant", Content: answer})
	}
	fillMetadata(conv, generic)
	return conv, nil
}

func fillMetadata(conv *conversation.Conversation, generic map[string]json.RawMessage) {
	if raw, ok := generic["conversation_id"]; ok {
		_ = json.Unmarshal(raw, &conv.ID)
	} else if raw, ok := generic["id"]; ok {
		_ = json.Unmarshal(raw, &conv.ID)
	}
	if raw, ok := generic["created_at"]; ok {
		_ = json.Unmarshal(raw, &conv.CreatedAt)
	}
	if raw, ok := generic["last_message_at"]; ok {
		_ = json.Unmarshal(raw, &conv.LastMessageAt)
	}
	if raw, ok := generic["participants"]; ok {
		_ = json.Unmarshal(raw, &conv.Participants)
	}
}
