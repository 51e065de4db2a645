package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/spacesedan/brandpulse/internal/models"
)

// Normalize maps any raw record into the common schema. It never fails:
// absent fields become zero values.
func Normalize(item models.RawItem) models.NormalizedItem {
	var n models.NormalizedItem

	switch raw := item.(type) {
	case models.RedditRaw:
		n = reddit(raw)
	case models.SocialRaw:
		n = social(raw)
	case models.NewsRaw:
		n = news(raw)
	default:
		// only reachable through a type embedding one of the raw records
		n = models.NormalizedItem{Source: item.Source()}
	}

	n.ID = ItemID(n.Source, n.URL, n.Text)
	return n
}

// All normalizes items in order
func All[T models.RawItem](items []T) []models.NormalizedItem {
	out := make([]models.NormalizedItem, 0, len(items))
	for _, item := range items {
		out = append(out, Normalize(item))
	}
	return out
}

// ItemID is the content+source hash used for cross-run uniqueness
func ItemID(source models.Source, url, text string) string {
	sum := sha256.Sum256([]byte(string(source) + "|" + url + "|" + text))
	return hex.EncodeToString(sum[:16])
}

func reddit(r models.RedditRaw) models.NormalizedItem {
	text := r.Selftext
	if text == "" {
		text = r.Title
	}
	return models.NormalizedItem{
		Source:     models.SourceReddit,
		Author:     r.Author,
		Text:       text,
		CreatedAt:  r.CreatedUTC,
		URL:        r.Permalink,
		Score:      r.Score,
		Subreddit:  r.Subreddit,
		Type:       r.Type,
		ParentPost: r.ParentPost,
	}
}

func social(s models.SocialRaw) models.NormalizedItem {
	return models.NormalizedItem{
		Source:     models.SourceSocial,
		Author:     s.User,
		Text:       s.Text,
		CreatedAt:  s.CreatedAt,
		URL:        s.URL,
		Likes:      s.Likes,
		Retweets:   s.Retweets,
		Replies:    s.Replies,
		Engagement: s.Engagement,
	}
}

func news(a models.NewsRaw) models.NormalizedItem {
	text := a.Title
	if d := strings.TrimSpace(a.Description); d != "" {
		text += " - " + d
	}
	return models.NormalizedItem{
		Source:    models.SourceNews,
		Author:    a.Outlet,
		Text:      text,
		CreatedAt: a.PublishedAt,
		URL:       a.URL,
	}
}
