package extract

import "github.com/siftlabs/sift/internal/conversation"

// ResponseRate measures how often the assistant answers a user message: the
// ratio of user→assistant reply pairs to user messages. A trailing user
// message counts as asked-but-unanswered. 0 when no user messages exist.
type ResponseRate struct{}

func (ResponseRate) Name() string { return "response_rate" }

func (ResponseRate) Extract(conv *conversation.Conversation) (any, error) {
	rate := replyRatio(conv.Messages, conversation.RoleUser, conversation.RoleAssistant)
	return rate, nil
}

// UserReplyRate is the mirror of ResponseRate: how often the user replies to
// an assistant message. A trailing assistant message counts as unanswered.
type UserReplyRate struct{}

func (UserReplyRate) Name() string { return "user_reply_rate" }

func (UserReplyRate) Extract(conv *conversation.Conversation) (any, error) {
	rate := replyRatio(conv.Messages, conversation.RoleAssistant, conversation.RoleUser)
	return rate, nil
}

// replyRatio counts prompter→replier transitions among consecutive pairs and
// divides by the number of prompter messages that expected a reply.
func replyRatio(msgs []conversation.Message, prompter, replier conversation.Role) float64 {
	prompts, replies := 0, 0
	for i := 0; i < len(msgs)-1; i++ {
		if msgs[i].Canon == prompter && msgs[i+1].Canon == replier {
			prompts++
			replies++
		}
	}
	if len(msgs) > 0 && msgs[len(msgs)-1].Canon == prompter {
		prompts++
	}
	if prompts == 0 {
		return 0.0
	}
	return float64(replies) / float64(prompts)
}

// ConversationDuration is the span between the first and last message in
// minutes, from timestamp_ms. 0 when either timestamp is missing.
type ConversationDuration struct{}

func (ConversationDuration) Name() string { return "conversation_duration" }

func (ConversationDuration) Extract(conv *conversation.Conversation) (any, error) {
	msgs := conv.Messages
	if len(msgs) == 0 {
		return 0.0, nil
	}
	first, last := msgs[0], msgs[len(msgs)-1]
	if first.TimestampMS == nil || last.TimestampMS == nil {
		return 0.0, nil
	}
	return float64(*last.TimestampMS-*first.TimestampMS) / (1000 * 60), nil
}
