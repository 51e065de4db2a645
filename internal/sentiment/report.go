package sentiment

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/brandpulse/internal/models"
)

const REPORT_TIME_LAYOUT = "2006-01-02 15:04:05"

var csvHeader = []string{
	"source", "author", "text", "cleaned_text", "created_at", "url",
	"sentiment_label", "sentiment_score", "polarity", "subjectivity", "lexicon_label",
	"text_length", "keywords", "engagement", "likes", "score", "subreddit", "sentiment_numeric",
}

// WriteCSV writes one row per scored item under a fixed header
func WriteCSV(w io.Writer, items []models.ScoredItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, it := range items {
		row := []string{
			string(it.Source),
			it.Author,
			it.Text,
			it.CleanedText,
			it.CreatedAt,
			it.URL,
			it.SentimentLabel,
			formatFloat(it.SentimentScore),
			formatFloat(it.Polarity),
			formatFloat(it.Subjectivity),
			it.LexiconLabel,
			strconv.Itoa(it.TextLength),
			strings.Join(it.Keywords, ", "),
			strconv.Itoa(it.Engagement),
			strconv.Itoa(it.Likes),
			strconv.Itoa(it.Score),
			it.Subreddit,
			strconv.Itoa(it.SentimentNumeric),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// SummaryReport renders the plain-text report for a brand
func SummaryReport(brandName string, ins models.Insights, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sentiment Analysis Report - %s\n", brandName)
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.Format(REPORT_TIME_LAYOUT))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	fmt.Fprintf(&b, "Total Items Analyzed: %d\n\n", ins.TotalItems)

	b.WriteString("Sentiment Distribution:\n")
	for _, c := range RankCounts(ins.SentimentDistribution) {
		pct := 0.0
		if ins.TotalItems > 0 {
			pct = float64(c.Count) / float64(ins.TotalItems) * 100
		}
		fmt.Fprintf(&b, "  %s: %d (%.1f%%)\n", c.Key, c.Count, pct)
	}

	fmt.Fprintf(&b, "\nAverage Polarity: %.3f\n", ins.AveragePolarity)
	fmt.Fprintf(&b, "Average Subjectivity: %.3f\n\n", ins.AverageSubjectivity)

	b.WriteString("Source Breakdown:\n")
	for _, c := range RankCounts(ins.SourceBreakdown) {
		fmt.Fprintf(&b, "  %s: %d\n", c.Key, c.Count)
	}

	b.WriteString("\nAverage Sentiment by Source:\n")
	for _, c := range RankCounts(ins.SourceBreakdown) {
		fmt.Fprintf(&b, "  %s: %.3f\n", c.Key, ins.AvgSentimentBySource[c.Key])
	}

	return b.String()
}
