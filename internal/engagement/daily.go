package engagement

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/VarunAIFund/pulse/internal/models"
)

// Engagement score component weights. Message volume dominates, raw
// activity hours matter least.
const (
	messageWeight  = 0.4
	reactionWeight = 0.3
	emojiWeight    = 0.2
	hoursWeight    = 0.1

	// saturation caps: a day is "fully engaged" on a component at these counts
	messageCap  = 20.0
	reactionCap = 10.0
	emojiCap    = 15.0
)

// Tracker aggregates scored messages into per-channel daily metrics.
// Days are bucketed by calendar date in Location.
type Tracker struct {
	Location *time.Location
}

func NewTracker(loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{Location: loc}
}

// AggregateDaily groups one channel's messages by calendar date and
// computes each day's metrics. Messages without a sentiment result count
// toward volume but contribute 0.0 to the sentiment average. Results are
// sorted by date ascending.
func (t *Tracker) AggregateDaily(channel string, messages []models.Message) []models.DailyMetric {
	type bucket struct {
		sentiments []float64
		emojiCount int
		reactions  int
		hours      map[int]bool
		threaded   int
		total      int
	}

	buckets := make(map[string]*bucket)
	for _, msg := range messages {
		ts, ok := parseTimestamp(msg.Timestamp)
		if !ok {
			continue
		}
		local := ts.In(t.Location)
		date := local.Format("2006-01-02")

		b := buckets[date]
		if b == nil {
			b = &bucket{hours: make(map[int]bool)}
			buckets[date] = b
		}

		b.total++
		b.hours[local.Hour()] = true
		// thread parents carry their own timestamp as the root; only replies count
		if msg.ThreadTS != "" && msg.ThreadTS != msg.Timestamp {
			b.threaded++
		}
		for _, r := range msg.Reactions {
			b.reactions += r.Count
		}
		if msg.Sentiment != nil {
			b.sentiments = append(b.sentiments, msg.Sentiment.Overall)
			b.emojiCount += msg.Sentiment.EmojiCount
		} else {
			b.sentiments = append(b.sentiments, 0.0)
		}
	}

	metrics := make([]models.DailyMetric, 0, len(buckets))
	for date, b := range buckets {
		avg, std := meanStd(b.sentiments)
		hours := make([]int, 0, len(b.hours))
		for h := range b.hours {
			hours = append(hours, h)
		}
		sort.Ints(hours)

		metrics = append(metrics, models.DailyMetric{
			Channel:             channel,
			Date:                date,
			MessageCount:        b.total,
			AvgSentiment:        roundTo(avg, 3),
			SentimentStd:        roundTo(std, 3),
			EmojiCount:          b.emojiCount,
			ReactionCount:       b.reactions,
			ActiveHours:         hours,
			ActiveHoursCount:    len(hours),
			ThreadParticipation: roundTo(float64(b.threaded)/float64(b.total), 3),
			EngagementScore:     EngagementScore(b.total, b.reactions, b.emojiCount, len(hours)),
		})
	}

	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Date < metrics[j].Date })
	return metrics
}

// EngagementScore combines a day's activity signals into a 0..1 score.
// Each component saturates at its cap so one busy thread cannot dominate.
func EngagementScore(messageCount, reactionCount, emojiCount, activeHours int) float64 {
	score := messageWeight*math.Min(float64(messageCount)/messageCap, 1.0) +
		reactionWeight*math.Min(float64(reactionCount)/reactionCap, 1.0) +
		emojiWeight*math.Min(float64(emojiCount)/emojiCap, 1.0) +
		hoursWeight*(float64(activeHours)/24.0)
	return roundTo(score, 3)
}

// parseTimestamp reads the platform's "seconds.fraction" message ID
func parseTimestamp(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	secs := ts
	if i := strings.IndexByte(ts, '.'); i >= 0 {
		secs = ts[:i]
	}
	n, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(n, 0), true
}

// meanStd returns the mean and sample standard deviation; std is 0 for
// fewer than two samples
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	if len(values) < 2 {
		return mean, 0
	}
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(values)-1))
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
