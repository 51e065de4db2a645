package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/brandpulse/internal/clients"
	"github.com/spacesedan/brandpulse/internal/models"
)

type NewsSearcher interface {
	Everything(ctx context.Context, q clients.EverythingQuery) (*models.NewsAPIEverythingResponse, error)
}

type News struct {
	api          NewsSearcher
	lookbackDays int
	language     string
	now          func() time.Time
}

func NewNews(api NewsSearcher, lookbackDays int, language string) *News {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	if language == "" {
		language = "en"
	}
	return &News{api: api, lookbackDays: lookbackDays, language: language, now: time.Now}
}

// Fetch returns up to max articles from the lookback window. Unlike the other
// connectors a failure here is returned to the caller.
func (n *News) Fetch(ctx context.Context, brandName string, max int) ([]models.NewsRaw, error) {
	to := n.now().UTC()
	from := to.AddDate(0, 0, -n.lookbackDays)

	res, err := n.api.Everything(ctx, clients.EverythingQuery{
		Query:    brandName,
		From:     from,
		To:       to,
		Language: n.language,
		PageSize: max,
	})
	if err != nil {
		return nil, fmt.Errorf("news fetch for %q: %w", brandName, err)
	}

	articles := make([]models.NewsRaw, 0, len(res.Articles))
	for _, a := range res.Articles {
		articles = append(articles, models.NewsRaw{
			Title:       a.Title,
			Outlet:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			Description: a.Description,
			URL:         a.URL,
		})
	}

	slog.Info("[NewsConnector] Fetched articles",
		slog.String("brand", brandName),
		slog.Int("count", len(articles)))
	return articles, nil
}
