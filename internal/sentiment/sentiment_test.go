package sentiment

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/spacesedan/brandpulse/internal/models"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace", "   \n\t", ""},
		{"bare url", "Check https://acme.com/deals now!", "Check now!"},
		{"www url", "www.acme.com rocks", "rocks"},
		{"markdown link keeps text", "[great deal](https://acme.com/deal) from @acme #sale", "great deal from"},
		{"emphasis and emoticon", "**Love** the new Acme shoes :)", "Love the new Acme shoes"},
		{"leading hashtag is not a heading", "#acme is back", "is back"},
		{"disallowed characters", "Tom & Jerry's café", "Tom Jerrys caf"},
		{"collapses whitespace", "too    many\n\nspaces", "too many spaces"},
		{"ordered list marker kept", "1. Great product from Acme", "1. Great product from Acme"},
		{"year at line start kept", "2024. What a year for Acme", "2024. What a year for Acme"},
		{"numbered lines", "Top picks:\n1. Acme\n2. Beta", "Top picks 1. Acme 2. Beta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	text := "Acme shoes are great. Acme shoes last, acme rocks!"

	got := Keywords(text, DEFAULT_KEYWORDS)
	want := []string{"acme", "shoes", "great", "last", "rocks"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Keywords() = %v, want %v", got, want)
	}

	if got := Keywords(text, 2); strings.Join(got, ",") != "acme,shoes" {
		t.Errorf("Keywords(top 2) = %v", got)
	}
	if got := Keywords("there should have been more", 10); len(got) != 0 {
		t.Errorf("stopwords leaked: %v", got)
	}
	if got := Keywords("", 10); got == nil || len(got) != 0 {
		t.Errorf("Keywords(empty) = %#v, want empty non-nil", got)
	}
}

func TestLexiconLabelBoundaries(t *testing.T) {
	tests := []struct {
		polarity float64
		want     string
	}{
		{0.1, models.LabelNeutral},
		{-0.1, models.LabelNeutral},
		{0.1000001, models.LabelPositive},
		{-0.1000001, models.LabelNegative},
		{0, models.LabelNeutral},
		{1, models.LabelPositive},
		{-1, models.LabelNegative},
	}

	for _, tt := range tests {
		if got := LexiconLabel(tt.polarity); got != tt.want {
			t.Errorf("LexiconLabel(%v) = %s, want %s", tt.polarity, got, tt.want)
		}
	}
}

func TestAnalyzeWithVADER(t *testing.T) {
	if got := AnalyzeWithVADER(""); got.Polarity != 0 || got.Subjectivity != 0.5 || got.Label != models.LabelNeutral {
		t.Errorf("empty text = %+v, want neutral default", got)
	}

	pos := AnalyzeWithVADER("I love this brand")
	if pos.Label != models.LabelPositive || pos.Polarity <= 0.5 {
		t.Errorf("positive text = %+v", pos)
	}
	neg := AnalyzeWithVADER("This brand is terrible")
	if neg.Label != models.LabelNegative || neg.Polarity >= -0.4 {
		t.Errorf("negative text = %+v", neg)
	}
	neu := AnalyzeWithVADER("The brand released a product")
	if neu.Label != models.LabelNeutral || neu.Polarity != 0 {
		t.Errorf("neutral text = %+v", neu)
	}

	for _, s := range []LexiconScore{pos, neg, neu} {
		if s.Subjectivity < 0 || s.Subjectivity > 1 || s.Polarity < -1 || s.Polarity > 1 {
			t.Errorf("score out of range: %+v", s)
		}
	}
}

type stubClassifier struct {
	result Classification
	err    error
	panics bool
	seen   string
	calls  int
}

func (s *stubClassifier) Classify(_ context.Context, text string) (Classification, error) {
	s.calls++
	s.seen = text
	if s.panics {
		panic("model exploded")
	}
	return s.result, s.err
}

func TestSafeClassifier(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input skips backend", func(t *testing.T) {
		stub := &stubClassifier{result: Classification{Label: "POSITIVE", Score: 0.9}}
		got, err := NewSafeClassifier(stub).Classify(ctx, "  ")
		if err != nil || got != NeutralClassification || stub.calls != 0 {
			t.Errorf("got %+v, %v, calls %d", got, err, stub.calls)
		}
	})

	t.Run("error becomes neutral", func(t *testing.T) {
		got, err := NewSafeClassifier(&stubClassifier{err: errors.New("timeout")}).Classify(ctx, "text")
		if err != nil || got != NeutralClassification {
			t.Errorf("got %+v, %v", got, err)
		}
	})

	t.Run("panic becomes neutral", func(t *testing.T) {
		got, err := NewSafeClassifier(&stubClassifier{panics: true}).Classify(ctx, "text")
		if err != nil || got != NeutralClassification {
			t.Errorf("got %+v, %v", got, err)
		}
	})

	t.Run("input truncated", func(t *testing.T) {
		stub := &stubClassifier{result: Classification{Label: "NEGATIVE", Score: 0.8}}
		NewSafeClassifier(stub).Classify(ctx, strings.Repeat("é", 600))
		if n := utf8.RuneCountInString(stub.seen); n != MAX_MODEL_INPUT {
			t.Errorf("backend saw %d runes, want %d", n, MAX_MODEL_INPUT)
		}
	})

	t.Run("labels normalized", func(t *testing.T) {
		for in, want := range map[string]string{
			"positive": models.LabelPositive,
			"Negative": models.LabelNegative,
			"LABEL_1":  models.LabelNeutral,
			"":         models.LabelNeutral,
		} {
			got, _ := NewSafeClassifier(&stubClassifier{result: Classification{Label: in, Score: 0.7}}).Classify(ctx, "x")
			if got.Label != want {
				t.Errorf("label %q -> %q, want %q", in, got.Label, want)
			}
		}
	})

	t.Run("out of range score", func(t *testing.T) {
		got, _ := NewSafeClassifier(&stubClassifier{result: Classification{Label: "POSITIVE", Score: 1.5}}).Classify(ctx, "x")
		if got.Score != DEFAULT_CONFIDENCE {
			t.Errorf("score = %v, want %v", got.Score, DEFAULT_CONFIDENCE)
		}
	})
}

type stubLabels struct {
	labels []models.LabelScore
	err    error
}

func (s stubLabels) Classify(context.Context, string) ([]models.LabelScore, error) {
	return s.labels, s.err
}

func TestRemoteClassifierPicksTopLabel(t *testing.T) {
	r := NewRemoteClassifier(stubLabels{labels: []models.LabelScore{
		{Label: "NEGATIVE", Score: 0.1},
		{Label: "POSITIVE", Score: 0.9},
	}})
	got, err := r.Classify(context.Background(), "x")
	if err != nil || got.Label != "POSITIVE" || got.Score != 0.9 {
		t.Errorf("Classify() = %+v, %v", got, err)
	}

	if _, err := NewRemoteClassifier(stubLabels{}).Classify(context.Background(), "x"); err == nil {
		t.Error("empty label list should be an error")
	}
}

func TestScoreEmptyText(t *testing.T) {
	s := NewScorer(LexiconClassifier{}, 1)
	got := s.Score(context.Background(), models.NormalizedItem{Source: models.SourceNews})

	if got.SentimentLabel != models.LabelNeutral || got.SentimentScore != 0.5 {
		t.Errorf("label/score = %s/%v, want NEUTRAL/0.5", got.SentimentLabel, got.SentimentScore)
	}
	if got.Polarity != 0 || got.Subjectivity != 0.5 {
		t.Errorf("polarity/subjectivity = %v/%v, want 0/0.5", got.Polarity, got.Subjectivity)
	}
	if got.SentimentNumeric != 0 || got.Keywords == nil {
		t.Errorf("numeric = %d keywords = %#v", got.SentimentNumeric, got.Keywords)
	}
}

func e2eItems() []models.NormalizedItem {
	return []models.NormalizedItem{
		{Source: models.SourceSocial, Text: "I love this brand"},
		{Source: models.SourceSocial, Text: "This brand is terrible"},
		{Source: models.SourceReddit, Text: "The brand released a product"},
	}
}

func TestScoreAllEndToEnd(t *testing.T) {
	scored, err := NewScorer(LexiconClassifier{}, 2).ScoreAll(context.Background(), e2eItems())
	if err != nil {
		t.Fatalf("ScoreAll() error = %v", err)
	}

	wantLabels := []string{models.LabelPositive, models.LabelNegative, models.LabelNeutral}
	wantNumeric := []int{1, -1, 0}
	for i, it := range scored {
		if it.SentimentLabel != wantLabels[i] || it.LexiconLabel != wantLabels[i] {
			t.Errorf("item %d labels = %s/%s, want %s", i, it.SentimentLabel, it.LexiconLabel, wantLabels[i])
		}
		if it.SentimentNumeric != wantNumeric[i] {
			t.Errorf("item %d numeric = %d, want %d", i, it.SentimentNumeric, wantNumeric[i])
		}
		if len(it.Keywords) > STORED_KEYWORDS {
			t.Errorf("item %d has %d keywords", i, len(it.Keywords))
		}
	}

	ins := BuildInsights(scored)
	if ins.TotalItems != 3 {
		t.Errorf("TotalItems = %d, want 3", ins.TotalItems)
	}
	sum := 0
	for _, c := range ins.SentimentDistribution {
		sum += c
	}
	if sum != ins.TotalItems {
		t.Errorf("distribution sums to %d, want %d", sum, ins.TotalItems)
	}
	if ins.SentimentBySource[models.SourceSocial][models.LabelPositive] != 1 ||
		ins.SentimentBySource[models.SourceSocial][models.LabelNegative] != 1 ||
		ins.SentimentBySource[models.SourceReddit][models.LabelNeutral] != 1 {
		t.Errorf("SentimentBySource = %v", ins.SentimentBySource)
	}
	if ins.AvgSentimentBySource[models.SourceSocial] != 0 || ins.AvgSentimentBySource[models.SourceReddit] != 0 {
		t.Errorf("AvgSentimentBySource = %v", ins.AvgSentimentBySource)
	}
}

func TestScoreAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewScorer(LexiconClassifier{}, 1).ScoreAll(ctx, e2eItems()); err == nil {
		t.Error("ScoreAll() error = nil on canceled context")
	}
}

func scoredWith(polarities ...float64) []models.ScoredItem {
	items := make([]models.ScoredItem, len(polarities))
	for i, p := range polarities {
		items[i] = models.ScoredItem{
			NormalizedItem: models.NormalizedItem{Source: models.SourceNews, Text: string(rune('a' + i))},
			SentimentLabel: LexiconLabel(p),
			LexiconLabel:   LexiconLabel(p),
			Polarity:       p,
			Subjectivity:   0.5,
		}
	}
	return items
}

func TestBuildInsightsHighlightsKeepOrderOnTies(t *testing.T) {
	ins := BuildInsights(scoredWith(0.5, 0.9, 0.5, -0.2, 0.5, 0.5, 0.5))

	texts := func(h []models.Highlight) string {
		var b strings.Builder
		for _, x := range h {
			b.WriteString(x.Text)
		}
		return b.String()
	}
	if got := texts(ins.TopPositive); got != "bacef" {
		t.Errorf("TopPositive order = %q, want bacef", got)
	}
	if got := texts(ins.TopNegative); got != "dacef" {
		t.Errorf("TopNegative order = %q, want dacef", got)
	}
}

func TestBuildInsightsEmpty(t *testing.T) {
	ins := BuildInsights(nil)
	if ins.TotalItems != 0 || math.IsNaN(ins.AveragePolarity) || ins.AveragePolarity != 0 {
		t.Errorf("empty insights = %+v", ins)
	}
	if ins.SentimentDistribution == nil || ins.TopPositive == nil {
		t.Error("empty insights should carry empty, non-nil collections")
	}
}

func TestWriteCSV(t *testing.T) {
	scored, _ := NewScorer(LexiconClassifier{}, 1).ScoreAll(context.Background(), e2eItems())

	var buf bytes.Buffer
	if err := WriteCSV(&buf, scored); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv parse error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "social" || rows[1][6] != models.LabelPositive || rows[1][17] != "1" {
		t.Errorf("first row = %v", rows[1])
	}
}

func TestSummaryReport(t *testing.T) {
	scored, _ := NewScorer(LexiconClassifier{}, 1).ScoreAll(context.Background(), e2eItems())
	report := SummaryReport("Acme", BuildInsights(scored), time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"Sentiment Analysis Report - Acme\n",
		"Generated: 2024-03-08 12:00:00\n",
		strings.Repeat("=", 60),
		"Total Items Analyzed: 3\n",
		"  NEGATIVE: 1 (33.3%)\n",
		"Average Polarity: ",
		"Source Breakdown:\n  social: 2\n  reddit: 1\n",
		"Average Sentiment by Source:\n  social: 0.000\n  reddit: 0.000\n",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q\n%s", want, report)
		}
	}
}
