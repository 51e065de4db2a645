package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/brandpulse/internal/brand"
	"github.com/spacesedan/brandpulse/internal/compiler"
	"github.com/spacesedan/brandpulse/internal/models"
	"github.com/spacesedan/brandpulse/internal/sentiment"
	"github.com/spacesedan/brandpulse/internal/storage"
)

var ErrCorpusNotFound = errors.New("analysis: compiled corpus not found")

// Sink receives every finished analysis. Failures are logged by the
// Analyzer and never fail the run.
type Sink interface {
	Name() string
	Publish(ctx context.Context, brandName, brandKey string, items []models.ScoredItem, insights models.Insights) error
}

// Stage is reported through the progress callback
type Stage string

const (
	StageScoring  Stage = "scoring"
	StageInsights Stage = "insights"
)

type Result struct {
	BrandKey string
	Items    []models.ScoredItem
	Insights models.Insights
	Report   string
}

type Analyzer struct {
	store  storage.Store
	scorer *sentiment.Scorer
	sinks  []Sink
	now    func() time.Time
}

func New(store storage.Store, scorer *sentiment.Scorer, sinks ...Sink) *Analyzer {
	return &Analyzer{store: store, scorer: scorer, sinks: sinks, now: time.Now}
}

// Run scores a brand's compiled corpus and writes the CSV, insights and
// summary report next to each other under sentiment_analysis/<key>/.
func (a *Analyzer) Run(ctx context.Context, brandName string, progress func(Stage)) (Result, error) {
	if progress == nil {
		progress = func(Stage) {}
	}
	key := brand.Key(brandName)

	items, err := compiler.LoadCorpus(ctx, a.store, key)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidData) {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrCorpusNotFound, key, err)
	}
	if err != nil {
		return Result{}, fmt.Errorf("load corpus: %w", err)
	}

	start := time.Now()
	progress(StageScoring)
	scored, err := a.scorer.ScoreAll(ctx, items)
	if err != nil {
		return Result{}, err
	}
	slog.Info("[Analyzer] Scored corpus",
		slog.String("brand_key", key),
		slog.Int("items", len(scored)),
		slog.Duration("elapsed", time.Since(start)))

	progress(StageInsights)
	insights := sentiment.BuildInsights(scored)
	report := sentiment.SummaryReport(brandName, insights, a.now())

	if err := a.persist(ctx, key, scored, insights, report); err != nil {
		return Result{}, err
	}

	for _, sink := range a.sinks {
		if err := sink.Publish(ctx, brandName, key, scored, insights); err != nil {
			slog.Error("[Analyzer] Sink failed",
				slog.String("sink", sink.Name()),
				slog.String("brand_key", key),
				slog.String("error", err.Error()))
		}
	}

	return Result{BrandKey: key, Items: scored, Insights: insights, Report: report}, nil
}

func (a *Analyzer) persist(ctx context.Context, key string, scored []models.ScoredItem, insights models.Insights, report string) error {
	var csvBuf bytes.Buffer
	if err := sentiment.WriteCSV(&csvBuf, scored); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	if err := a.store.Put(ctx, storage.AnalysisKey(key, storage.ResultsCSV), csvBuf.Bytes()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := storage.PutJSON(ctx, a.store, storage.AnalysisKey(key, storage.InsightsJSON), insights); err != nil {
		return fmt.Errorf("write insights: %w", err)
	}
	if err := a.store.Put(ctx, storage.AnalysisKey(key, storage.SummaryReport), []byte(report)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// HasResults reports whether a finished analysis is stored for the brand
func HasResults(ctx context.Context, store storage.Store, brandName string) (bool, error) {
	return store.Exists(ctx, storage.AnalysisKey(brand.Key(brandName), storage.ResultsCSV))
}
