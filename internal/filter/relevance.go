package filter

import "strings"

// DefaultExcludeKeywords guards against brand names that collide with
// gaming and hardware vocabulary.
var DefaultExcludeKeywords = []string{
	"game", "gaming", "gpu", "console", "steam", "nintendo", "playstation", "xbox",
}

// Relevance decides whether a fetched item is about the brand
type Relevance struct {
	brand   string
	exclude []string
}

// NewRelevance builds a predicate for brand. A nil exclude list falls back
// to DefaultExcludeKeywords; an empty non-nil list disables exclusion.
func NewRelevance(brand string, exclude []string) Relevance {
	if exclude == nil {
		exclude = DefaultExcludeKeywords
	}
	lowered := make([]string, 0, len(exclude))
	for _, kw := range exclude {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return Relevance{
		brand:   strings.ToLower(strings.TrimSpace(brand)),
		exclude: lowered,
	}
}

// Keep reports whether an item with this title and body should be retained.
// The combined text must mention the brand. If it also mentions an excluded
// keyword the brand must appear in the title itself.
func (r Relevance) Keep(title, body string) bool {
	if r.brand == "" {
		return false
	}

	lowerTitle := strings.ToLower(title)
	combined := lowerTitle + " " + strings.ToLower(body)
	if !strings.Contains(combined, r.brand) {
		return false
	}

	for _, kw := range r.exclude {
		if strings.Contains(combined, kw) {
			return strings.Contains(lowerTitle, r.brand)
		}
	}
	return true
}
