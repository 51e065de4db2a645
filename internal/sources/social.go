package sources

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spacesedan/brandpulse/internal/models"
)

const SOCIAL_MENTIONS_TOP_N = 20

type TweetSearcher interface {
	RunTweetSearch(ctx context.Context, query string, maxItems int) ([]models.ApifyTweet, error)
}

type Social struct {
	api  TweetSearcher
	topN int
}

func NewSocial(api TweetSearcher) *Social {
	return &Social{api: api, topN: SOCIAL_MENTIONS_TOP_N}
}

// Fetch collects posts by the brand account (mode "by") or posts mentioning
// it (mode "mentions", ranked by engagement). An actor failure is logged and
// yields no items; only an unknown mode is an error.
func (s *Social) Fetch(ctx context.Context, brandName, mode string, max int) ([]models.SocialRaw, error) {
	handle := strings.ReplaceAll(strings.TrimSpace(brandName), " ", "")

	var query string
	limit := max
	switch mode {
	case models.SocialModeBy:
		query = fmt.Sprintf("from:%s -filter:replies -filter:retweets", handle)
	case models.SocialModeMentions:
		query = "@" + handle
		limit = max * 2
	default:
		return nil, fmt.Errorf("invalid social mode %q: choose %q or %q", mode, models.SocialModeBy, models.SocialModeMentions)
	}

	tweets, err := s.api.RunTweetSearch(ctx, query, limit)
	if err != nil {
		slog.Warn("[SocialConnector] Actor run failed, skipping",
			slog.String("mode", mode),
			slog.String("error", err.Error()))
		return []models.SocialRaw{}, nil
	}

	out := make([]models.SocialRaw, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, tweetToRaw(t, mode))
	}

	if mode == models.SocialModeMentions {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Engagement > out[j].Engagement })
		if len(out) > s.topN {
			out = out[:s.topN]
		}
	}

	slog.Info("[SocialConnector] Fetched posts",
		slog.String("mode", mode),
		slog.String("handle", handle),
		slog.Int("count", len(out)))
	return out, nil
}

func tweetToRaw(t models.ApifyTweet, mode string) models.SocialRaw {
	return models.SocialRaw{
		User:       firstNonEmpty(t.UserScreenName, t.Author.UserName),
		Text:       strings.TrimSpace(firstNonEmpty(t.FullText, t.Text, t.TweetText, t.Content)),
		CreatedAt:  firstNonEmpty(t.CreatedAt, t.CreatedAtAlt),
		Likes:      t.LikeCount,
		Retweets:   t.RetweetCount,
		Replies:    t.ReplyCount,
		Engagement: t.LikeCount + t.RetweetCount + t.ReplyCount,
		URL:        t.URL,
		Mode:       mode,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
