package extract

import "github.com/siftlabs/sift/internal/conversation"

// ResponseTime computes timing statistics over consecutive message pairs:
// overall deltas plus the user→assistant and assistant→user transition
// averages. All statistics default to 0 when no timed pairs exist.
type ResponseTime struct{}

func (ResponseTime) Name() string { return "response_time" }

func (ResponseTime) Extract(conv *conversation.Conversation) (any, error) {
	var all, userToAssistant, assistantToUser []float64

	for i := 1; i < len(conv.Messages); i++ {
		prev, curr := conv.Messages[i-1], conv.Messages[i]
		if prev.TimestampMS == nil || curr.TimestampMS == nil {
			continue
		}
		delta := float64(*curr.TimestampMS-*prev.TimestampMS) / 1000.0
		all = append(all, delta)

		switch {
		case prev.Canon == conversation.RoleUser && curr.Canon == conversation.RoleAssistant:
			userToAssistant = append(userToAssistant, delta)
		case prev.Canon == conversation.RoleAssistant && curr.Canon == conversation.RoleUser:
			assistantToUser = append(assistantToUser, delta)
		}
	}

	min, max := minMax(all)
	return map[string]float64{
		"avg_seconds":           mean(all),
		"min_seconds":           min,
		"max_seconds":           max,
		"median_seconds":        median(all),
		"std_dev_seconds":       popStdDev(all),
		"user_to_assistant_avg": mean(userToAssistant),
		"assistant_to_user_avg": mean(assistantToUser),
	}, nil
}
