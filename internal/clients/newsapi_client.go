package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spacesedan/brandpulse/internal/models"
)

const NEWS_API_URL = "https://newsapi.org"

// ErrNewsAPI marks a failed news search. It is fatal for a compilation run.
var ErrNewsAPI = errors.New("news api request failed")

type NewsAPIClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	backoff time.Duration
}

func NewNewsAPIClient(apiKey string, timeout time.Duration) *NewsAPIClient {
	if timeout <= 0 {
		timeout = DEFAULT_HTTP_TIMEOUT
	}
	return &NewsAPIClient{
		BaseURL: NEWS_API_URL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
		backoff: INITIAL_BACKOFF,
	}
}

type EverythingQuery struct {
	Query    string
	From     time.Time
	To       time.Time
	Language string
	PageSize int
}

// Everything searches all indexed articles, most relevant first
func (n *NewsAPIClient) Everything(ctx context.Context, q EverythingQuery) (*models.NewsAPIEverythingResponse, error) {
	if n.APIKey == "" {
		slog.Error("[NewsAPIClient] API key is missing")
		return nil, fmt.Errorf("%w: API key is missing", ErrNewsAPI)
	}

	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("from", q.From.Format("2006-01-02"))
	params.Set("to", q.To.Format("2006-01-02"))
	params.Set("sortBy", "relevancy")
	params.Set("language", q.Language)
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	endpoint := n.BaseURL + "/v2/everything?" + params.Encode()

	backoff := n.backoff
	var lastErr error

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		slog.Debug("[NewsAPIClient] Searching articles",
			slog.String("query", q.Query), slog.Int("attempt", attempt))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Api-Key", n.APIKey)
		req.Header.Set("User-Agent", USER_AGENT)

		res, err := n.Client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("[NewsAPIClient] Request failed", slog.String("error", err.Error()))
			lastErr = err
		} else {
			body, readErr := io.ReadAll(res.Body)
			res.Body.Close()
			if readErr != nil {
				slog.Error("[NewsAPIClient] Failed to read response body", slog.String("error", readErr.Error()))
				return nil, readErr
			}

			var response models.NewsAPIEverythingResponse
			decodeErr := json.Unmarshal(body, &response)

			switch res.StatusCode {
			case http.StatusOK:
				if decodeErr != nil {
					slog.Error("[NewsAPIClient] Failed to parse JSON response", slog.String("error", decodeErr.Error()))
					return nil, fmt.Errorf("%w: %v", ErrNewsAPI, decodeErr)
				}
				slog.Info("[NewsAPIClient] Successfully fetched articles",
					slog.Int("count", len(response.Articles)))
				return &response, nil
			case http.StatusTooManyRequests, http.StatusInternalServerError,
				http.StatusBadGateway, http.StatusServiceUnavailable:
				slog.Warn("[NewsAPIClient] Transient error, retrying...",
					slog.Int("statusCode", res.StatusCode),
					slog.Duration("backoff", backoff), slog.Int("attempt", attempt))
				lastErr = apiError(res.StatusCode, response.Message)
			default:
				slog.Error("[NewsAPIClient] Request rejected",
					slog.Int("statusCode", res.StatusCode),
					slog.String("code", response.Code))
				return nil, apiError(res.StatusCode, response.Message)
			}
		}

		if attempt == MAX_RETRIES {
			break
		}
		if err := sleepCtx(ctx, backoff); err != nil {
			return nil, err
		}
		backoff = nextBackoff(backoff)
	}

	slog.Error("[NewsAPIClient] Failed after max retries")
	return nil, fmt.Errorf("%w: failed after max retries: %v", ErrNewsAPI, lastErr)
}

func apiError(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Errorf("%w: status %d: %s", ErrNewsAPI, status, message)
}
