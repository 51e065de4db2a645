package sentiment

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/spacesedan/brandpulse/internal/models"
	"golang.org/x/sync/errgroup"
)

const DEFAULT_WORKERS = 4

// Scorer attaches both sentiment signals to normalized items
type Scorer struct {
	classifier *SafeClassifier
	workers    int
}

func NewScorer(classifier Classifier, workers int) *Scorer {
	if workers <= 0 {
		workers = DEFAULT_WORKERS
	}
	return &Scorer{classifier: NewSafeClassifier(classifier), workers: workers}
}

// Score builds the ScoredItem for one item. It never fails.
func (s *Scorer) Score(ctx context.Context, item models.NormalizedItem) models.ScoredItem {
	cleaned := CleanText(item.Text)
	c, _ := s.classifier.Classify(ctx, cleaned)
	lex := AnalyzeWithVADER(cleaned)

	keywords := Keywords(cleaned, DEFAULT_KEYWORDS)
	if len(keywords) > STORED_KEYWORDS {
		keywords = keywords[:STORED_KEYWORDS]
	}

	return models.ScoredItem{
		NormalizedItem:   item,
		CleanedText:      cleaned,
		SentimentLabel:   c.Label,
		SentimentScore:   c.Score,
		Polarity:         lex.Polarity,
		Subjectivity:     lex.Subjectivity,
		LexiconLabel:     lex.Label,
		TextLength:       utf8.RuneCountInString(item.Text),
		Keywords:         keywords,
		SentimentNumeric: models.NumericSentiment(c.Label),
	}
}

// ScoreAll scores items concurrently and returns them in input order
func (s *Scorer) ScoreAll(ctx context.Context, items []models.NormalizedItem) ([]models.ScoredItem, error) {
	scored := make([]models.ScoredItem, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, item := range items {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			scored[i] = s.Score(gctx, item)
			if (i+1)%10 == 0 {
				slog.Debug("[Scorer] Progress", slog.Int("done", i+1), slog.Int("total", len(items)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Info("[Scorer] Scored items", slog.Int("count", len(scored)))
	return scored, nil
}
