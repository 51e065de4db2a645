package sentiment

import (
	"sort"

	"github.com/spacesedan/brandpulse/internal/models"
)

const TOP_HIGHLIGHTS = 5

// BuildInsights aggregates a scored collection. It is a pure function of
// items; an empty collection yields zero averages and empty maps.
func BuildInsights(items []models.ScoredItem) models.Insights {
	ins := models.Insights{
		TotalItems:            len(items),
		SentimentDistribution: map[string]int{},
		LexiconDistribution:   map[string]int{},
		SourceBreakdown:       map[models.Source]int{},
		SentimentBySource:     map[models.Source]map[string]int{},
		AvgSentimentBySource:  map[models.Source]float64{},
		TopPositive:           []models.Highlight{},
		TopNegative:           []models.Highlight{},
	}
	if len(items) == 0 {
		return ins
	}

	var polaritySum, subjectivitySum float64
	numericSum := map[models.Source]int{}

	for _, it := range items {
		ins.SentimentDistribution[it.SentimentLabel]++
		ins.LexiconDistribution[it.LexiconLabel]++
		ins.SourceBreakdown[it.Source]++

		bySource, ok := ins.SentimentBySource[it.Source]
		if !ok {
			bySource = map[string]int{}
			ins.SentimentBySource[it.Source] = bySource
		}
		bySource[it.SentimentLabel]++

		polaritySum += it.Polarity
		subjectivitySum += it.Subjectivity
		numericSum[it.Source] += it.SentimentNumeric
	}

	n := float64(len(items))
	ins.AveragePolarity = polaritySum / n
	ins.AverageSubjectivity = subjectivitySum / n
	for src, count := range ins.SourceBreakdown {
		ins.AvgSentimentBySource[src] = float64(numericSum[src]) / float64(count)
	}

	ins.TopPositive = highlights(items, func(a, b float64) bool { return a > b })
	ins.TopNegative = highlights(items, func(a, b float64) bool { return a < b })
	return ins
}

// highlights returns the first TOP_HIGHLIGHTS items by polarity under
// before. Equal polarities keep their original order.
func highlights(items []models.ScoredItem, before func(a, b float64) bool) []models.Highlight {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return before(items[idx[i]].Polarity, items[idx[j]].Polarity)
	})
	if len(idx) > TOP_HIGHLIGHTS {
		idx = idx[:TOP_HIGHLIGHTS]
	}

	out := make([]models.Highlight, 0, len(idx))
	for _, i := range idx {
		out = append(out, models.Highlight{
			Text:     items[i].Text,
			Polarity: items[i].Polarity,
			Source:   items[i].Source,
		})
	}
	return out
}

// Count is one entry of a ranked distribution
type Count[K ~string] struct {
	Key   K
	Count int
}

// RankCounts orders a distribution by count, then key
func RankCounts[K ~string](m map[K]int) []Count[K] {
	out := make([]Count[K], 0, len(m))
	for k, c := range m {
		out = append(out, Count[K]{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
