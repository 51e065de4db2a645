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
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/brandpulse/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"
)

type RedditOptions struct {
	ClientID          string
	ClientSecret      string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerMinute int
}

type RedditClient struct {
	BaseURL   string
	UserAgent string

	config  *clientcredentials.Config
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	backoff time.Duration
	mu      sync.Mutex
}

func NewRedditClient(opts RedditOptions) *RedditClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DEFAULT_HTTP_TIMEOUT
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 60
	}
	if opts.UserAgent == "" {
		opts.UserAgent = USER_AGENT
	}

	oauthConf := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     REDDIT_AUTH_URL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	rc := &RedditClient{
		BaseURL:   REDDIT_API_URL,
		UserAgent: opts.UserAgent,
		config:    oauthConf,
		timeout:   opts.Timeout,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1),
		backoff:   INITIAL_BACKOFF,
	}
	rc.RefreshClient()

	slog.Info("[RedditClient] Initialized",
		slog.Int("requests_per_minute", opts.RequestsPerMinute),
		slog.Duration("timeout", opts.Timeout))
	return rc
}

// RefreshClient drops the cached token by building a new oauth2 client
func (rc *RedditClient) RefreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.config == nil {
		return
	}
	c := rc.config.Client(context.Background())
	c.Timeout = rc.timeout
	rc.client = c
}

func (rc *RedditClient) httpClient() *http.Client {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.client
}

// Search runs one query against a subreddit ("all" for the global index)
func (rc *RedditClient) Search(ctx context.Context, subreddit, query string, limit int, timeFilter string) ([]models.RedditThingData, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("t", timeFilter)
	params.Set("sort", "relevance")
	params.Set("type", "link")
	params.Set("raw_json", "1")
	if subreddit != "all" {
		params.Set("restrict_sr", "true")
	}

	var listing models.RedditListing
	if err := rc.get(ctx, fmt.Sprintf("/r/%s/search", url.PathEscape(subreddit)), params, &listing); err != nil {
		return nil, err
	}

	posts := make([]models.RedditThingData, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind == models.RedditKindPost {
			posts = append(posts, child.Data)
		}
	}
	return posts, nil
}

// TopComments returns up to limit top-level comments of the post at permalink
func (rc *RedditClient) TopComments(ctx context.Context, permalink string, limit int) ([]models.RedditThingData, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("depth", "1")
	params.Set("sort", "top")
	params.Set("raw_json", "1")

	// the comments endpoint answers with [post listing, comment listing]
	var listings []models.RedditListing
	if err := rc.get(ctx, strings.TrimSuffix(permalink, "/"), params, &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var comments []models.RedditThingData
	for _, child := range listings[1].Data.Children {
		if child.Kind != models.RedditKindComment {
			continue
		}
		comments = append(comments, child.Data)
		if len(comments) == limit {
			break
		}
	}
	return comments, nil
}

func (rc *RedditClient) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := strings.TrimSuffix(rc.BaseURL, "/") + path + "?" + params.Encode()
	backoff := rc.backoff
	var lastErr error

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		if rc.limiter != nil {
			if err := rc.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("[RedditClient] failed to build request: %w", err)
		}
		req.Header.Set("User-Agent", rc.UserAgent)

		resp, err := rc.httpClient().Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			slog.Warn("[RedditClient] Request failed, retrying",
				slog.Int("attempt", attempt), slog.String("error", err.Error()))
			if err := sleepCtx(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("[RedditClient] failed to decode response: %w", err)
			}
			return nil
		case resp.StatusCode == http.StatusUnauthorized:
			drain(resp)
			slog.Warn("[RedditClient] Token expired - Refreshing and Retrying...")
			lastErr = errors.New("unauthorized")
			rc.RefreshClient()
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			drain(resp)
			slog.Warn("[RedditClient] Retrying request",
				slog.Int("status", resp.StatusCode),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff))
			lastErr = fmt.Errorf("status code %d", resp.StatusCode)
			if err := sleepCtx(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff)
		default:
			drain(resp)
			return fmt.Errorf("[RedditClient] unexpected status code %d", resp.StatusCode)
		}
	}

	return fmt.Errorf("[RedditClient] max retries reached: %w", lastErr)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
