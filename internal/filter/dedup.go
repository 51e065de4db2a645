package filter

import "github.com/spacesedan/brandpulse/internal/models"

// Deduper remembers keys seen during one run. The zero value is not usable.
type Deduper struct {
	seen map[string]struct{}
}

func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// First reports whether key has not been seen before and records it
func (d *Deduper) First(key string) bool {
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

func (d *Deduper) Len() int { return len(d.seen) }

// UniqueBy keeps the first item for each key in discovery order
func UniqueBy[T any](items []T, key func(T) string) []T {
	d := NewDeduper()
	out := make([]T, 0, len(items))
	for _, item := range items {
		if d.First(key(item)) {
			out = append(out, item)
		}
	}
	return out
}

// ByScore drops Reddit items below minScore and, unless includeComments is
// set, every comment. Order is preserved.
func ByScore(items []models.RedditRaw, minScore int, includeComments bool) []models.RedditRaw {
	out := make([]models.RedditRaw, 0, len(items))
	for _, item := range items {
		if item.Score < minScore {
			continue
		}
		if !includeComments && item.Type != models.RedditTypePost {
			continue
		}
		out = append(out, item)
	}
	return out
}
