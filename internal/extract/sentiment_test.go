package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siftlabs/sift/internal/conversation"
)

func TestSentiment(t *testing.T) {
	tests := []struct {
		name string
		conv conversation.Conversation
		want float64
	}{
		{
			name: "empty conversation is neutral",
			conv: conversation.Conversation{},
			want: 0.0,
		},
		{
			name: "no lexicon hits is neutral",
			conv: msgs("User", "the package arrived on tuesday"),
			want: 0.0,
		},
		{
			name: "strong negative",
			conv: msgs("User", "terrible"),
			want: -1.0,
		},
		{
			name: "negated positive",
			conv: msgs("User", "not happy at all"),
			want: -0.4,
		},
		{
			name: "recency favors the newer message",
			conv: msgs("User", "bad", "Assistant", "good"),
			want: 0.25,
		},
		{
			name: "mixed message balances out",
			conv: msgs("User", "good but bad"),
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := Sentiment{}.Extract(norm(tt.conv))
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			assert.InDelta(t, tt.want, value.(float64), 1e-9)
		})
	}
}

func TestScoreText(t *testing.T) {
	tests := []struct {
		text      string
		wantScore float64
		wantTerms int
	}{
		{"", 0, 0},
		{"terrible", -1, 1},
		{"Excellent work", 1, 1},
		{"good but bad", 0, 2},
		// "not" flips "happy" negative and "not happy" positive.
		{"not happy at all", -0.2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			score, terms := scoreText(tt.text)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantTerms, terms)
		})
	}
}

func TestSentimentClamped(t *testing.T) {
	// One term up-weighted 2x would hit 2.0 unclamped.
	value, err := Sentiment{}.Extract(norm(msgs("User", "hello", "Assistant", "excellent")))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	assert.InDelta(t, 1.0, value.(float64), 1e-9)
}
