package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/brandpulse/internal/models"
)

const (
	// LEXICON_THRESHOLD splits polarity into labels; both bounds are exclusive
	LEXICON_THRESHOLD = 0.1
	// VADER_THRESHOLD is the conventional compound cut used when VADER stands
	// in for the model classifier
	VADER_THRESHOLD = 0.20

	DEFAULT_POLARITY     = 0.0
	DEFAULT_SUBJECTIVITY = 0.5
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

type LexiconScore struct {
	Polarity     float64
	Subjectivity float64
	Label        string
}

// AnalyzeWithVADER scores text with the VADER lexicon. Polarity is the
// compound score and subjectivity the share of opinionated tokens.
func AnalyzeWithVADER(text string) LexiconScore {
	if strings.TrimSpace(text) == "" {
		return LexiconScore{Polarity: DEFAULT_POLARITY, Subjectivity: DEFAULT_SUBJECTIVITY, Label: models.LabelNeutral}
	}

	s := analyzer.PolarityScores(text)
	subjectivity := clamp(s.Positive+s.Negative, 0, 1)
	return LexiconScore{
		Polarity:     s.Compound,
		Subjectivity: subjectivity,
		Label:        LexiconLabel(s.Compound),
	}
}

// LexiconLabel maps polarity to a label: above 0.1 is positive, below -0.1
// negative, and the closed interval between is neutral.
func LexiconLabel(polarity float64) string {
	switch {
	case polarity > LEXICON_THRESHOLD:
		return models.LabelPositive
	case polarity < -LEXICON_THRESHOLD:
		return models.LabelNegative
	default:
		return models.LabelNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
