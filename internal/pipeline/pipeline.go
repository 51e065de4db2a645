package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/brandpulse/internal/analysis"
	"github.com/spacesedan/brandpulse/internal/compiler"
	"github.com/spacesedan/brandpulse/internal/models"
	"github.com/spacesedan/brandpulse/internal/storage"
)

type Compiler interface {
	Compile(ctx context.Context, brandName string, limits models.FetchLimits) (compiler.Result, error)
}

type Analyzer interface {
	Run(ctx context.Context, brandName string, progress func(analysis.Stage)) (analysis.Result, error)
}

// Pipeline compiles a brand's corpus and analyzes it
type Pipeline struct {
	compiler Compiler
	analyzer Analyzer
}

func New(c Compiler, a Analyzer) *Pipeline {
	return &Pipeline{compiler: c, analyzer: a}
}

// Analyze runs both stages and returns the analysis result. update, when set,
// is told about each job state the run enters.
func (p *Pipeline) Analyze(ctx context.Context, brandName string, limits models.FetchLimits, update func(models.JobStatus)) (analysis.Result, error) {
	if update == nil {
		update = func(models.JobStatus) {}
	}
	start := time.Now()

	update(models.JobScraping)
	compiled, err := p.compiler.Compile(ctx, brandName, limits)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("compile %q: %w", brandName, err)
	}

	update(models.JobAnalyzing)
	res, err := p.analyzer.Run(ctx, brandName, func(stage analysis.Stage) {
		if stage == analysis.StageInsights {
			update(models.JobGeneratingInsights)
		}
	})
	if err != nil {
		return analysis.Result{}, fmt.Errorf("analyze %q: %w", brandName, err)
	}

	slog.Info("[Pipeline] Brand analyzed",
		slog.String("brand_key", res.BrandKey),
		slog.Bool("cached_corpus", compiled.Cached),
		slog.Int("items", len(res.Items)),
		slog.Duration("elapsed", time.Since(start)))
	return res, nil
}

// Run matches jobs.RunFunc
func (p *Pipeline) Run(ctx context.Context, brandName string, limits models.FetchLimits, update func(models.JobStatus)) (string, error) {
	res, err := p.Analyze(ctx, brandName, limits, update)
	if err != nil {
		return "", err
	}
	return storage.AnalysisPrefix(res.BrandKey), nil
}
