package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/spacesedan/brandpulse/internal/models"
)

const (
	MAX_MODEL_INPUT    = 512
	DEFAULT_CONFIDENCE = 0.5
)

type Classification struct {
	Label string
	Score float64
}

// NeutralClassification is returned for empty input and on any failure
var NeutralClassification = Classification{Label: models.LabelNeutral, Score: DEFAULT_CONFIDENCE}

// Classifier is the model-based sentiment signal
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// LexiconClassifier stands in for a model when none is configured
type LexiconClassifier struct{}

func (LexiconClassifier) Classify(_ context.Context, text string) (Classification, error) {
	compound := analyzer.PolarityScores(text).Compound

	label := models.LabelNeutral
	if compound >= VADER_THRESHOLD {
		label = models.LabelPositive
	} else if compound <= -VADER_THRESHOLD {
		label = models.LabelNegative
	}
	return Classification{Label: label, Score: 0.5 + math.Abs(compound)/2}, nil
}

// SafeClassifier wraps a backend so that classification always succeeds.
// Input is cut to MAX_MODEL_INPUT runes, empty input, errors and panics
// yield NeutralClassification, and labels are normalized.
type SafeClassifier struct {
	inner    Classifier
	maxRunes int
}

func NewSafeClassifier(inner Classifier) *SafeClassifier {
	return &SafeClassifier{inner: inner, maxRunes: MAX_MODEL_INPUT}
}

func (s *SafeClassifier) Classify(ctx context.Context, text string) (result Classification, _ error) {
	if strings.TrimSpace(text) == "" {
		return NeutralClassification, nil
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("[Classifier] Backend panicked, using neutral default",
				slog.String("panic", fmt.Sprint(r)))
			result = NeutralClassification
		}
	}()

	c, err := s.inner.Classify(ctx, truncateRunes(text, s.maxRunes))
	if err != nil {
		slog.Warn("[Classifier] Classification failed, using neutral default",
			slog.String("error", err.Error()))
		return NeutralClassification, nil
	}

	c.Label = NormalizeLabel(c.Label)
	if math.IsNaN(c.Score) || c.Score < 0 || c.Score > 1 {
		c.Score = DEFAULT_CONFIDENCE
	}
	return c, nil
}

// NormalizeLabel upper-cases a backend label; anything outside the three
// known labels becomes NEUTRAL.
func NormalizeLabel(label string) string {
	switch l := strings.ToUpper(strings.TrimSpace(label)); l {
	case models.LabelPositive, models.LabelNegative, models.LabelNeutral:
		return l
	case "POS":
		return models.LabelPositive
	case "NEG":
		return models.LabelNegative
	default:
		return models.LabelNeutral
	}
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
