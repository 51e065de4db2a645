package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spacesedan/brandpulse/internal/models"
	"github.com/spacesedan/brandpulse/internal/sentiment"
	"github.com/spacesedan/brandpulse/internal/storage"
)

type recordingSink struct {
	name  string
	err   error
	calls int
	items int
	key   string
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Publish(_ context.Context, _, brandKey string, items []models.ScoredItem, _ models.Insights) error {
	r.calls++
	r.items = len(items)
	r.key = brandKey
	return r.err
}

func seedCorpus(t *testing.T, store storage.Store, key string) {
	t.Helper()
	corpus := []models.NormalizedItem{
		{ID: "1", Source: models.SourceSocial, Text: "I love this brand"},
		{ID: "2", Source: models.SourceReddit, Text: "This brand is terrible"},
		{ID: "3", Source: models.SourceNews, Text: "The brand released a product"},
	}
	if err := storage.PutJSON(context.Background(), store, storage.CompiledKey(key, storage.CompiledNormalized), corpus); err != nil {
		t.Fatal(err)
	}
}

func TestRunWritesArtifactsAndNotifiesSinks(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	seedCorpus(t, store, "acme_co")

	failing := &recordingSink{name: "broken", err: errors.New("unreachable")}
	ok := &recordingSink{name: "ok"}
	a := New(store, sentiment.NewScorer(sentiment.LexiconClassifier{}, 2), failing, ok)
	a.now = func() time.Time { return time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC) }

	var stages []Stage
	res, err := a.Run(ctx, "Acme Co", func(s Stage) { stages = append(stages, s) })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.BrandKey != "acme_co" || res.Insights.TotalItems != 3 {
		t.Errorf("result = %s / %d items", res.BrandKey, res.Insights.TotalItems)
	}
	if len(stages) != 2 || stages[0] != StageScoring || stages[1] != StageInsights {
		t.Errorf("stages = %v", stages)
	}

	for _, file := range []string{storage.ResultsCSV, storage.InsightsJSON, storage.SummaryReport} {
		if ok, _ := store.Exists(ctx, storage.AnalysisKey("acme_co", file)); !ok {
			t.Errorf("%s not written", file)
		}
	}

	report, _ := store.Get(ctx, storage.AnalysisKey("acme_co", storage.SummaryReport))
	if !strings.Contains(string(report), "Sentiment Analysis Report - Acme Co") {
		t.Errorf("report = %q", report)
	}

	var ins models.Insights
	if err := storage.GetJSON(ctx, store, storage.AnalysisKey("acme_co", storage.InsightsJSON), &ins); err != nil {
		t.Fatal(err)
	}
	if ins.SentimentDistribution[models.LabelPositive] != 1 || ins.SentimentDistribution[models.LabelNegative] != 1 {
		t.Errorf("distribution = %v", ins.SentimentDistribution)
	}

	if failing.calls != 1 || ok.calls != 1 || ok.items != 3 || ok.key != "acme_co" {
		t.Errorf("sinks: failing=%d ok=%d items=%d key=%s", failing.calls, ok.calls, ok.items, ok.key)
	}

	if has, _ := HasResults(ctx, store, "ACME CO"); !has {
		t.Error("HasResults() = false after Run")
	}
}

func TestRunWithoutCorpus(t *testing.T) {
	a := New(storage.NewMemoryStore(), sentiment.NewScorer(sentiment.LexiconClassifier{}, 1))
	_, err := a.Run(context.Background(), "nobody", nil)
	if !errors.Is(err, ErrCorpusNotFound) {
		t.Errorf("Run() error = %v, want ErrCorpusNotFound", err)
	}
}

func TestRunMalformedCorpus(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Put(context.Background(), storage.CompiledKey("acme", storage.CompiledNormalized), []byte("{not json"))

	_, err := New(store, sentiment.NewScorer(sentiment.LexiconClassifier{}, 1)).Run(context.Background(), "acme", nil)
	if !errors.Is(err, ErrCorpusNotFound) {
		t.Errorf("Run() error = %v, want ErrCorpusNotFound", err)
	}
	if !errors.Is(err, storage.ErrInvalidData) {
		t.Errorf("Run() error = %v, want it to keep the decode cause", err)
	}
}
