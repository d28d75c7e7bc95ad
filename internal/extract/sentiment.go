package extract

import (
	"regexp"
	"strings"

	"github.com/siftlabs/sift/internal/conversation"
)

// Sentiment is a lexicon-driven conversation sentiment scorer. Positive and
// negative phrase tables carry intensities from 1 to 5; negator tokens flip a
// term's polarity and each intensifier token adds a 20% multiplicative boost.
// The conversation score is the term-count-weighted average of per-message
// scores, with the three most recent messages up-weighted, clamped to
// [-1, 1]. A conversation with no lexicon hits scores exactly 0 (neutral).
type Sentiment struct{}

func (Sentiment) Name() string { return "sentiment_score" }

type lexiconEntry struct {
	re     *regexp.Regexp
	weight float64
}

func lexicon(entries map[string]float64) []lexiconEntry {
	out := make([]lexiconEntry, 0, len(entries))
	for pattern, weight := range entries {
		out = append(out, lexiconEntry{re: regexp.MustCompile(pattern), weight: weight})
	}
	return out
}

// Intensity scale: 5 very strong … 1 slight. Patterns are matched against
// lowercased text.
var positiveLexicon = lexicon(map[string]float64{
	`\bexcellent\b`:   5,
	`\bperfect\b`:     5,
	`\bincredible\b`:  5,
	`\bamazing\b`:     5,
	`\boutstanding\b`: 5,
	`\bexceptional\b`: 5,
	`\bbrilliant\b`:   5,
	`\blove it\b`:     5,
	`\bawesome\b`:     5,
	`\bfantastic\b`:   5,

	`\bgreat\b`:       4,
	`\bdelighted\b`:   4,
	`\bimpressed\b`:   4,
	`\bwonderful\b`:   4,
	`\bterrific\b`:    4,
	`\breally good\b`: 4,
	`\bvery happy\b`:  4,
	`\bthank you\b`:   4,

	`\bgood\b`:       3,
	`\bhappy\b`:      3,
	`\bpleased\b`:    3,
	`\bsatisfied\b`:  3,
	`\bnice\b`:       3,
	`\bwell done\b`:  3,
	`\bthank(s)?\b`:  3,
	`\bappreciate\b`: 3,

	`\bokay\b`:       2,
	`\bfine\b`:       2,
	`\bgladly\b`:     2,
	`\bpleasant\b`:   2,
	`\bdecent\b`:     2,
	`\bacceptable\b`: 2,
	`\balright\b`:    2,

	`\bnot bad\b`: 1,
	`\bsure\b`:    1,
	`\byes\b`:     1,
	`\bagree\b`:   1,
	`\bcool\b`:    1,
})

var negativeLexicon = lexicon(map[string]float64{
	`\bterrible\b`:     5,
	`\bhorrible\b`:     5,
	`\bawful\b`:        5,
	`\bdisgusting\b`:   5,
	`\babysmal\b`:      5,
	`\bfurious\b`:      5,
	`\bunacceptable\b`: 5,
	`\bhate\b`:         5,
	`\bdespise\b`:      5,
	`\bextremely\s+(?:bad|poor|disappointed|angry|frustrated)\b`: 5,

	`\bvery\s+(?:bad|poor|disappointed|angry|frustrated)\b`: 4,
	`\bannoyed\b`:      4,
	`\bangry\b`:        4,
	`\bdisappointed\b`: 4,
	`\bpathetic\b`:     4,
	`\bmiserable\b`:    4,
	`\bunhappy\b`:      4,
	`\bupsetting\b`:    4,

	`\bbad\b`:           3,
	`\bpoor\b`:          3,
	`\bdislike\b`:       3,
	`\bunfortunate\b`:   3,
	`\bunpleasant\b`:    3,
	`\buncomfortable\b`: 3,
	`\bfailure\b`:       3,
	`\bmistake\b`:       3,

	`\bnot good\b`:      2,
	`\bnot great\b`:     2,
	`\bnot happy\b`:     2,
	`\bdisappointing\b`: 2,
	`\bmediocre\b`:      2,
	`\bbelow average\b`: 2,
	`\binadequate\b`:    2,

	`\bcould be better\b`:   1,
	`\bneeds improvement\b`: 1,
	`\bnot ideal\b`:         1,
	`\bnot perfect\b`:       1,
	`\bnot sure\b`:          1,
	`\bnot convinced\b`:     1,
	`\bno\b`:                1,
	`\bnegative\b`:          1,
})

var (
	negators     = regexp.MustCompile(`\b(?:not|no|never|none|nobody|nowhere|neither|nor|nothing)\b`)
	intensifiers = regexp.MustCompile(`\b(?:very|extremely|incredibly|really|absolutely|definitely|totally)\b`)
)

// scoreText scores a single message. Returns the normalized score in [-1, 1]
// and the number of lexicon terms that matched; (0, 0) when nothing matched.
func scoreText(text string) (float64, int) {
	text = strings.ToLower(text)

	hasNegator := negators.MatchString(text)
	multiplier := 1.0 + 0.2*float64(len(intensifiers.FindAllStringIndex(text, -1)))

	var positive, negative float64
	terms := 0

	for _, entry := range positiveLexicon {
		if !entry.re.MatchString(text) {
			continue
		}
		if hasNegator {
			negative += entry.weight * multiplier
		} else {
			positive += entry.weight * multiplier
		}
		terms++
	}
	for _, entry := range negativeLexicon {
		if !entry.re.MatchString(text) {
			continue
		}
		if hasNegator {
			positive += entry.weight * multiplier
		} else {
			negative += entry.weight * multiplier
		}
		terms++
	}

	if terms == 0 {
		return 0, 0
	}
	return (positive - negative) / (positive + negative), terms
}

// Recency weights applied newest-first before normalizing by total term count.
var recencyWeights = []float64{2.0, 1.5, 1.2}

func (Sentiment) Extract(conv *conversation.Conversation) (any, error) {
	if len(conv.Messages) == 0 {
		return 0.0, nil
	}

	var weightedSum float64
	totalTerms := 0

	for i := len(conv.Messages) - 1; i >= 0; i-- {
		recency := len(conv.Messages) - 1 - i
		score, terms := scoreText(conv.Messages[i].Content)
		if terms == 0 {
			continue
		}
		weight := 1.0
		if recency < len(recencyWeights) {
			weight = recencyWeights[recency]
		}
		weightedSum += score * weight * float64(terms)
		totalTerms += terms
	}

	if totalTerms == 0 {
		return 0.0, nil
	}
	return clamp(weightedSum/float64(totalTerms), -1.0, 1.0), nil
}
