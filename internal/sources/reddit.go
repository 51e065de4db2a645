package sources

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/spacesedan/brandpulse/internal/filter"
	"github.com/spacesedan/brandpulse/internal/models"
)

const (
	REDDIT_BASE_URL          = "https://reddit.com"
	REDDIT_COMMENTS_PER_POST = 2
	REDDIT_MIN_COMMENT_CHARS = 50
	REDDIT_TIME_LAYOUT       = "2006-01-02 15:04:05"
)

// DefaultCommunities is searched instead of r/all when communities are enabled
var DefaultCommunities = []string{
	"reviews", "Complaints", "jobs", "personalfinance",
	"Scams", "CustomerService", "antiwork", "careerguidance",
}

type RedditSearcher interface {
	Search(ctx context.Context, subreddit, query string, limit int, timeFilter string) ([]models.RedditThingData, error)
	TopComments(ctx context.Context, permalink string, limit int) ([]models.RedditThingData, error)
}

type RedditOptions struct {
	TimeFilter      string
	MinScore        int
	IncludeComments bool
	UseCommunities  bool
	Communities     []string
	ExcludeKeywords []string
}

// RedditResult holds every unique item and the score-filtered view of them
type RedditResult struct {
	Unique   []models.RedditRaw
	Filtered []models.RedditRaw
}

type Reddit struct {
	api  RedditSearcher
	opts RedditOptions
}

func NewReddit(api RedditSearcher, opts RedditOptions) *Reddit {
	if opts.TimeFilter == "" {
		opts.TimeFilter = "year"
	}
	return &Reddit{api: api, opts: opts}
}

// RedditQueries are the searches issued for a brand, in order
func RedditQueries(brandName string) []string {
	return []string{
		brandName,
		brandName + " review",
		brandName + " experience",
		brandName + " customer service",
	}
}

func (r *Reddit) communities() []string {
	if !r.opts.UseCommunities {
		return []string{"all"}
	}
	if len(r.opts.Communities) > 0 {
		return r.opts.Communities
	}
	return DefaultCommunities
}

// Fetch searches every (query, community) pair with up to limit results
// each. A failed search is logged and contributes nothing.
func (r *Reddit) Fetch(ctx context.Context, brandName string, limit int) (RedditResult, error) {
	relevance := filter.NewRelevance(brandName, r.opts.ExcludeKeywords)
	seen := filter.NewDeduper()
	var unique []models.RedditRaw
	var rejected int

	for _, query := range RedditQueries(brandName) {
		for _, community := range r.communities() {
			if err := ctx.Err(); err != nil {
				return RedditResult{}, err
			}

			posts, err := r.api.Search(ctx, community, query, limit, r.opts.TimeFilter)
			if err != nil {
				slog.Warn("[RedditConnector] Search failed, skipping",
					slog.String("query", query),
					slog.String("subreddit", community),
					slog.String("error", err.Error()))
				continue
			}

			for _, post := range posts {
				if !relevance.Keep(post.Title, post.Selftext) {
					rejected++
					continue
				}

				raw := postToRaw(post, query)
				if !seen.First(raw.Permalink) {
					continue
				}
				unique = append(unique, raw)

				for _, comment := range r.comments(ctx, post, query) {
					if seen.First(comment.Permalink) {
						unique = append(unique, comment)
					}
				}
			}
		}
	}

	filtered := filter.ByScore(unique, r.opts.MinScore, r.opts.IncludeComments)

	slog.Info("[RedditConnector] Collected items",
		slog.String("brand", brandName),
		slog.Int("unique", len(unique)),
		slog.Int("filtered", len(filtered)),
		slog.Int("irrelevant", rejected))

	return RedditResult{Unique: unique, Filtered: filtered}, nil
}

func (r *Reddit) comments(ctx context.Context, post models.RedditThingData, query string) []models.RedditRaw {
	if post.Permalink == "" {
		return nil
	}

	comments, err := r.api.TopComments(ctx, post.Permalink, REDDIT_COMMENTS_PER_POST)
	if err != nil {
		slog.Warn("[RedditConnector] Comment fetch failed, skipping",
			slog.String("permalink", post.Permalink),
			slog.String("error", err.Error()))
		return nil
	}

	var out []models.RedditRaw
	for i, c := range comments {
		if i == REDDIT_COMMENTS_PER_POST {
			break
		}
		if utf8.RuneCountInString(c.Body) <= REDDIT_MIN_COMMENT_CHARS {
			continue
		}
		out = append(out, models.RedditRaw{
			Title:       "Comment on: " + post.Title,
			Author:      c.Author,
			Subreddit:   post.Subreddit,
			Score:       c.Score,
			CreatedUTC:  formatUTC(c.CreatedUTC),
			Permalink:   REDDIT_BASE_URL + c.Permalink,
			Selftext:    c.Body,
			Type:        models.RedditTypeComment,
			ParentPost:  post.Title,
			SearchQuery: query,
		})
	}
	return out
}

func postToRaw(post models.RedditThingData, query string) models.RedditRaw {
	return models.RedditRaw{
		Title:       post.Title,
		Author:      post.Author,
		Subreddit:   post.Subreddit,
		Score:       post.Score,
		UpvoteRatio: post.UpvoteRatio,
		NumComments: post.NumComments,
		CreatedUTC:  formatUTC(post.CreatedUTC),
		URL:         post.URL,
		Permalink:   REDDIT_BASE_URL + post.Permalink,
		Selftext:    post.Selftext,
		Type:        models.RedditTypePost,
		SearchQuery: query,
	}
}

func formatUTC(epoch float64) string {
	if epoch <= 0 {
		return ""
	}
	return time.Unix(int64(epoch), 0).UTC().Format(REDDIT_TIME_LAYOUT)
}
