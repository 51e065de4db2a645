package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/spacesedan/brandpulse/internal/models"
)

const (
	APIFY_API_URL          = "https://api.apify.com"
	APIFY_DEFAULT_ACTOR_ID = "CJdippxWmn9uRfooo"

	// run-sync-get-dataset-items holds the connection for up to 300s
	APIFY_SYNC_TIMEOUT = 310 * time.Second
)

// ApifyClient runs the tweet scraper actor synchronously and returns its dataset
type ApifyClient struct {
	BaseURL string
	Token   string
	ActorID string
	Client  *http.Client
	backoff time.Duration
}

func NewApifyClient(token, actorID string, timeout time.Duration) *ApifyClient {
	if actorID == "" {
		actorID = APIFY_DEFAULT_ACTOR_ID
	}
	if timeout <= 0 {
		timeout = APIFY_SYNC_TIMEOUT
	}
	return &ApifyClient{
		BaseURL: APIFY_API_URL,
		Token:   token,
		ActorID: actorID,
		Client:  &http.Client{Timeout: timeout},
		backoff: INITIAL_BACKOFF,
	}
}

// RunTweetSearch runs query on the actor and returns up to maxItems tweets.
// Every POST starts a new actor run, so a timed out run is not re-sent.
func (a *ApifyClient) RunTweetSearch(ctx context.Context, query string, maxItems int) ([]models.ApifyTweet, error) {
	if a.Token == "" {
		return nil, fmt.Errorf("[ApifyClient] token is missing")
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		a.BaseURL, url.PathEscape(a.ActorID), url.QueryEscape(a.Token))

	input := models.ApifyTweetInput{
		TwitterContent: query,
		MaxItems:       maxItems,
		QueryType:      "Latest",
		Lang:           "en",
	}

	start := time.Now()
	var tweets []models.ApifyTweet
	if err := postJSON(ctx, a.Client, "ApifyClient", endpoint, nil, a.backoff, false, input, &tweets); err != nil {
		return nil, fmt.Errorf("[ApifyClient] actor run failed: %w", err)
	}

	slog.Info("[ApifyClient] Actor run finished",
		slog.String("query", query),
		slog.Int("items", len(tweets)),
		slog.Duration("elapsed", time.Since(start)))
	return tweets, nil
}
