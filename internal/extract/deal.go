package extract

import (
	"regexp"
	"strings"

	"github.com/siftlabs/sift/internal/conversation"
)

// DealMade is a binary deal-outcome classifier. A rejection pattern anywhere
// in the last 5 messages forces 0; otherwise the conversation counts as a
// deal when at least 2 messages carry a deal indicator (at most one indicator
// per message, however many patterns match inside it).
type DealMade struct{}

func (DealMade) Name() string { return "deal_made" }

var dealPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bagree(d|ment)?\b`),
	regexp.MustCompile(`\bdeal\b`),
	regexp.MustCompile(`\bsold\b`),
	regexp.MustCompile(`\bpurchase(d)?\b`),
	regexp.MustCompile(`\bbuy\b`),
	regexp.MustCompile(`\bwill take\b`),
	regexp.MustCompile(`\baccept(ed)?\b`),
	regexp.MustCompile(`\bconfirm(ed)?\b`),
	regexp.MustCompile(`\bapprove(d)?\b`),
	regexp.MustCompile(`\bpayment\b`),
	regexp.MustCompile(`\btransfer(red)?\b`),
	regexp.MustCompile(`\bship(ping|ped)?\b`),
	regexp.MustCompile(`\border(ed)?\b`),
	regexp.MustCompile(`\bsale\b`),
	regexp.MustCompile(`\btransaction\b`),
	regexp.MustCompile(`\bsend money\b`),
	regexp.MustCompile(`\bpaid\b`),
	regexp.MustCompile(`\bdelivery\b`),
	regexp.MustCompile(`\bready to\b`),
	regexp.MustCompile(`\byou got (a )?deal\b`),
}

var noDealPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bno deal\b`),
	regexp.MustCompile(`\bdon't agree\b`),
	regexp.MustCompile(`\bdo not agree\b`),
	regexp.MustCompile(`\bcannot accept\b`),
	regexp.MustCompile(`\bcan't accept\b`),
	regexp.MustCompile(`\brefuse\b`),
	regexp.MustCompile(`\breject\b`),
	regexp.MustCompile(`\bnot interested\b`),
	regexp.MustCompile(`\btoo expensive\b`),
	regexp.MustCompile(`\bwon't work\b`),
	regexp.MustCompile(`\bwill not work\b`),
	regexp.MustCompile(`\bcan't do\b`),
	regexp.MustCompile(`\bcannot do\b`),
}

const dealWindowSize = 5

func (DealMade) Extract(conv *conversation.Conversation) (any, error) {
	msgs := conv.Messages

	// A rejection near the end means the deal fell through, whatever was
	// agreed earlier.
	window := msgs
	if len(msgs) > dealWindowSize {
		window = msgs[len(msgs)-dealWindowSize:]
	}
	for i := len(window) - 1; i >= 0; i-- {
		content := strings.ToLower(window[i].Content)
		for _, re := range noDealPatterns {
			if re.MatchString(content) {
				return 0, nil
			}
		}
	}

	indicators := 0
	for _, m := range msgs {
		content := strings.ToLower(m.Content)
		for _, re := range dealPatterns {
			if re.MatchString(content) {
				indicators++
				break
			}
		}
	}

	if indicators >= 2 {
		return 1, nil
	}
	return 0, nil
}
