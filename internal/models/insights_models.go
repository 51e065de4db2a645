package models

import "time"

// Highlight is one of the most positive or most negative items
type Highlight struct {
	Text     string  `json:"text"`
	Polarity float64 `json:"polarity"`
	Source   Source  `json:"source"`
}

// Insights summarizes a scored collection
type Insights struct {
	TotalItems            int                       `json:"total_items"`
	SentimentDistribution map[string]int            `json:"sentiment_distribution"`
	LexiconDistribution   map[string]int            `json:"lexicon_distribution"`
	AveragePolarity       float64                   `json:"average_polarity"`
	AverageSubjectivity   float64                   `json:"average_subjectivity"`
	SourceBreakdown       map[Source]int            `json:"source_breakdown"`
	SentimentBySource     map[Source]map[string]int `json:"sentiment_by_source"`
	TopPositive           []Highlight               `json:"top_positive"`
	TopNegative           []Highlight               `json:"top_negative"`
	AvgSentimentBySource  map[Source]float64        `json:"avg_sentiment_by_source"`
}

// InsightsEvent is published once per completed analysis
type InsightsEvent struct {
	BrandName   string    `json:"brand_name"`
	BrandKey    string    `json:"brand_key"`
	GeneratedAt time.Time `json:"generated_at"`
	Insights    Insights  `json:"insights"`
}
