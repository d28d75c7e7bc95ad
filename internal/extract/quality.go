package extract

import "github.com/siftlabs/sift/internal/conversation"

// Quality is a registered placeholder for conversation quality metrics.
// It always reports an empty feature map.
//
// TODO: implement the planned assistant/user length-ratio and
// question-answer-ratio metrics.
type Quality struct{}

func (Quality) Name() string { return "quality" }

func (Quality) Extract(conv *conversation.Conversation) (any, error) {
	return map[string]float64{}, nil
}
