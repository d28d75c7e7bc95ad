package extract

import (
	"time"

	"github.com/siftlabs/sift/internal/conversation"
)

// AggregateThroughput buckets a conversation's message counts into day, hour
// and 10-minute windows and reports only the bucket the conversation itself
// was created in. Callers merge these single-bucket samples across many
// conversations into corpus-wide time series; see MergeThroughput.
type AggregateThroughput struct{}

func (AggregateThroughput) Name() string { return "aggregate_throughput" }

const (
	dayKey    = "daily_throughput"
	hourKey   = "hourly_throughput"
	tenMinKey = "ten_min_throughput"
)

func (AggregateThroughput) Extract(conv *conversation.Conversation) (any, error) {
	createdAt, ok := conv.CreatedTime()
	if !ok {
		// No creation time, no bucket to sample. Not an error.
		return map[string]map[string]int{
			dayKey:    {},
			hourKey:   {},
			tenMinKey: {},
		}, nil
	}

	dayCounts := map[string]int{}
	hourCounts := map[string]int{}
	tenMinCounts := map[string]int{}
	for _, m := range conv.Messages {
		t, ok := m.Time()
		if !ok {
			continue
		}
		dayCounts[dayBucket(t)]++
		hourCounts[hourBucket(t)]++
		tenMinCounts[tenMinBucket(t)]++
	}

	day := dayBucket(createdAt)
	hour := hourBucket(createdAt)
	tenMin := tenMinBucket(createdAt)
	return map[string]map[string]int{
		dayKey:    {day: dayCounts[day]},
		hourKey:   {hour: hourCounts[hour]},
		tenMinKey: {tenMin: tenMinCounts[tenMin]},
	}, nil
}

func dayBucket(t time.Time) string {
	return t.Format("2006-01-02")
}

func hourBucket(t time.Time) string {
	return t.Format("2006-01-02T15") + ":00"
}

func tenMinBucket(t time.Time) string {
	floored := t.Truncate(10 * time.Minute)
	return floored.Format("2006-01-02T15:04")
}

// MergeThroughput folds per-conversation throughput samples from a feature
// map into corpus-wide bucket→count series, one series per granularity.
func MergeThroughput(features map[string]map[string]any) map[string]map[string]int {
	merged := map[string]map[string]int{
		dayKey:    {},
		hourKey:   {},
		tenMinKey: {},
	}
	for _, convFeatures := range features {
		sample, ok := convFeatures[AggregateThroughput{}.Name()].(map[string]map[string]int)
		if !ok {
			continue
		}
		for granularity, buckets := range sample {
			series, ok := merged[granularity]
			if !ok {
				continue
			}
			for bucket, count := range buckets {
				series[bucket] += count
			}
		}
	}
	return merged
}
