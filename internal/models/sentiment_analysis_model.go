package models

// Sentiment labels
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"
)

// ScoredItem is a NormalizedItem augmented with both sentiment signals.
// It is built once by the scorer and not modified afterwards.
type ScoredItem struct {
	NormalizedItem
	CleanedText      string   `json:"cleaned_text"`
	SentimentLabel   string   `json:"sentiment_label"`
	SentimentScore   float64  `json:"sentiment_score"`
	Polarity         float64  `json:"polarity"`
	Subjectivity     float64  `json:"subjectivity"`
	LexiconLabel     string   `json:"lexicon_label"`
	TextLength       int      `json:"text_length"`
	Keywords         []string `json:"keywords"`
	SentimentNumeric int      `json:"sentiment_numeric"`
}

// NumericSentiment maps a model label to -1, 0 or 1
func NumericSentiment(label string) int {
	switch label {
	case LabelPositive:
		return 1
	case LabelNegative:
		return -1
	default:
		return 0
	}
}
