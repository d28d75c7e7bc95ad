package extract

import (
	"regexp"
	"sort"

	"github.com/siftlabs/sift/internal/conversation"
)

// UserEngagement scores how engaged the human side of a conversation is, as
// a weighted blend of six sub-scores: message frequency, response rate,
// message length, question asking, lexical engagement signals, and timing
// consistency. Every sub-score degrades to a stated neutral default when its
// inputs are missing or unparsable; the blend is clamped to [0, 1].
type UserEngagement struct{}

func (UserEngagement) Name() string { return "user_engagement" }

var engagementWeights = struct {
	frequency    float64
	responseRate float64
	length       float64
	questions    float64
	signals      float64
	consistency  float64
}{0.15, 0.20, 0.15, 0.20, 0.15, 0.15}

var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\?`),
	regexp.MustCompile(`(?i)\b(?:what|who|where|when|why|how|is|are|were|was|will|would|could|should|do|does|did|can|may|might)\b.{3,}(?:\?|$)`),
}

var engagementSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\byes\b`),
	regexp.MustCompile(`(?i)\bsure\b`),
	regexp.MustCompile(`(?i)\bok\b`),
	regexp.MustCompile(`(?i)\bokay\b`),
	regexp.MustCompile(`(?i)\bplease\b`),
	regexp.MustCompile(`(?i)\bthanks\b`),
	regexp.MustCompile(`(?i)\bthank you\b`),
	regexp.MustCompile(`(?i)\bagree\b`),
	regexp.MustCompile(`(?i)\bi see\b`),
	regexp.MustCompile(`(?i)\bunderstand\b`),
	regexp.MustCompile(`(?i)\bgreat\b`),
	regexp.MustCompile(`(?i)\bcool\b`),
	regexp.MustCompile(`(?i)\bexcellent\b`),
	regexp.MustCompile(`(?i)\bawesome\b`),
	regexp.MustCompile(`(?i)\bnice\b`),
	regexp.MustCompile(`(?i)\binteresting\b`),
}

var disengagementSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbye\b`),
	regexp.MustCompile(`(?i)\bgoodbye\b`),
	regexp.MustCompile(`(?i)\bsee you\b`),
	regexp.MustCompile(`(?i)\bnot interested\b`),
	regexp.MustCompile(`(?i)\bno thanks\b`),
	regexp.MustCompile(`(?i)\bnever mind\b`),
	regexp.MustCompile(`(?i)\bforget it\b`),
	regexp.MustCompile(`(?i)\bnot now\b`),
	regexp.MustCompile(`(?i)\blater\b`),
	regexp.MustCompile(`(?i)\bdon't care\b`),
	regexp.MustCompile(`(?i)\bwhatever\b`),
}

func isQuestion(text string) bool {
	for _, re := range questionPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func countSignals(text string, signals []*regexp.Regexp) int {
	count := 0
	for _, re := range signals {
		if re.MatchString(text) {
			count++
		}
	}
	return count
}

func (UserEngagement) Extract(conv *conversation.Conversation) (any, error) {
	msgs := conv.Messages
	if len(msgs) < 2 {
		return 0.0, nil // not enough data to judge engagement
	}

	userMsgs, assistantMsgs := splitParticipants(conv)

	frequency := frequencyScore(msgs, userMsgs)
	responseRate := responseRateScore(userMsgs, assistantMsgs)
	length := lengthScore(userMsgs)
	questions := questionScore(userMsgs)
	signals := signalScore(userMsgs)
	consistency := consistencyScore(userMsgs)

	score := engagementWeights.frequency*frequency +
		engagementWeights.responseRate*responseRate +
		engagementWeights.length*length +
		engagementWeights.questions*questions +
		engagementWeights.signals*signals +
		engagementWeights.consistency*consistency

	return clamp(score, 0.0, 1.0), nil
}

// splitParticipants identifies which messages belong to the human side.
// Precedence: explicit participant role metadata, then sender-id pairing from
// the first two messages, then "whoever asks more questions" when exactly two
// senders exist, then even/odd positional alternation.
func splitParticipants(conv *conversation.Conversation) (user, assistant []conversation.Message) {
	msgs := conv.Messages

	var userID, assistantID string
	for _, p := range conv.Participants {
		switch conversation.CanonicalRole(conversation.Message{Role: p.Role}) {
		case conversation.RoleUser:
			userID = p.ID
		case conversation.RoleAssistant:
			assistantID = p.ID
		}
	}

	if (userID == "" || assistantID == "") && len(msgs) >= 2 {
		first, second := msgs[0].SenderID, msgs[1].SenderID
		if first != "" && second != "" && first != second {
			userID, assistantID = first, second
		}
	}

	for _, m := range msgs {
		switch m.SenderID {
		case "":
		case userID:
			user = append(user, m)
		case assistantID:
			assistant = append(assistant, m)
		}
	}
	if len(user) > 0 && len(assistant) > 0 {
		return user, assistant
	}

	// Two distinct senders but no usable pairing: the side asking more
	// questions is taken to be the user.
	bySender := map[string][]conversation.Message{}
	for _, m := range msgs {
		if m.SenderID != "" {
			bySender[m.SenderID] = append(bySender[m.SenderID], m)
		}
	}
	if len(bySender) == 2 {
		var ids []string
		for id := range bySender {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		q0, q1 := 0, 0
		for _, m := range bySender[ids[0]] {
			if isQuestion(m.Content) {
				q0++
			}
		}
		for _, m := range bySender[ids[1]] {
			if isQuestion(m.Content) {
				q1++
			}
		}
		if q0 >= q1 {
			return bySender[ids[0]], bySender[ids[1]]
		}
		return bySender[ids[1]], bySender[ids[0]]
	}

	// Last resort: alternating turns, user first.
	for i, m := range msgs {
		if i%2 == 0 {
			user = append(user, m)
		} else {
			assistant = append(assistant, m)
		}
	}
	return user, assistant
}

// frequencyScore buckets user messages per hour of conversation span.
// Neutral 0.5 when timestamps are unparsable or the span is under a minute.
func frequencyScore(msgs, userMsgs []conversation.Message) float64 {
	first, okFirst := msgs[0].CreatedTime()
	last, okLast := msgs[len(msgs)-1].CreatedTime()
	if !okFirst || !okLast {
		return 0.5
	}
	durationHours := last.Sub(first).Hours()
	if durationHours <= 0.01 {
		return 0.5
	}
	perHour := float64(len(userMsgs)) / durationHours
	switch {
	case perHour < 3:
		return 0.2
	case perHour < 6:
		return 0.4
	case perHour < 11:
		return 0.6
	case perHour < 21:
		return 0.8
	default:
		return 1.0
	}
}

func responseRateScore(userMsgs, assistantMsgs []conversation.Message) float64 {
	if len(assistantMsgs) == 0 {
		return 0.5
	}
	rate := float64(len(userMsgs)) / float64(len(assistantMsgs))
	if rate > 1.0 {
		return 1.0
	}
	return rate
}

func lengthScore(userMsgs []conversation.Message) float64 {
	if len(userMsgs) == 0 {
		return 0
	}
	var total int
	for _, m := range userMsgs {
		total += len(m.Content)
	}
	avg := float64(total) / float64(len(userMsgs))
	switch {
	case avg < 11:
		return 0.2
	case avg < 31:
		return 0.4
	case avg < 61:
		return 0.6
	case avg < 101:
		return 0.8
	default:
		return 1.0
	}
}

func questionScore(userMsgs []conversation.Message) float64 {
	if len(userMsgs) == 0 {
		return 0
	}
	questions := 0
	for _, m := range userMsgs {
		if isQuestion(m.Content) {
			questions++
		}
	}
	ratio := float64(questions) / float64(len(userMsgs))
	switch {
	case ratio == 0:
		return 0.0
	case ratio < 0.21:
		return 0.3
	case ratio < 0.41:
		return 0.6
	default:
		return 1.0
	}
}

func signalScore(userMsgs []conversation.Message) float64 {
	engaged, disengaged := 0, 0
	for _, m := range userMsgs {
		engaged += countSignals(m.Content, engagementSignals)
		disengaged += countSignals(m.Content, disengagementSignals)
	}
	total := engaged + disengaged
	if total == 0 {
		return 0.5
	}
	return float64(engaged) / float64(total)
}

// consistencyScore buckets the coefficient of variation of gaps between
// consecutive user messages. Neutral 0.5 with fewer than 3 timestamped user
// messages.
func consistencyScore(userMsgs []conversation.Message) float64 {
	if len(userMsgs) < 3 {
		return 0.5
	}
	var timestamps []float64
	for _, m := range userMsgs {
		if t, ok := m.CreatedTime(); ok {
			timestamps = append(timestamps, float64(t.UnixMilli()))
		}
	}
	if len(timestamps) < 3 {
		return 0.5
	}

	gaps := make([]float64, 0, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		gaps = append(gaps, (timestamps[i]-timestamps[i-1])/1000.0/60.0) // minutes
	}

	meanGap := mean(gaps)
	if meanGap <= 0 {
		return 1.0 // all messages at once: perfectly consistent
	}
	cv := sampleStdDev(gaps) / meanGap
	switch {
	case cv > 2.0:
		return 0.0
	case cv > 1.5:
		return 0.3
	case cv > 1.0:
		return 0.6
	default:
		return 1.0
	}
}
