package sentiment

import (
	_ "embed"
	"sort"
	"strings"
	"unicode"
)

const (
	DEFAULT_KEYWORDS  = 10
	STORED_KEYWORDS   = 5
	MIN_KEYWORD_CHARS = 4
)

//go:embed stopwords_en.txt
var stopwordList string

var stopwords = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, w := range strings.Fields(stopwordList) {
		m[w] = struct{}{}
	}
	return m
}()

func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

// Keywords ranks the alphanumeric, non-stopword tokens of text longer than
// three characters by frequency. Ties keep first-occurrence order.
func Keywords(text string, topN int) []string {
	if text == "" || topN <= 0 {
		return []string{}
	}

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	counts := make(map[string]int)
	var order []string
	for _, tok := range tokens {
		if len([]rune(tok)) < MIN_KEYWORD_CHARS || IsStopword(tok) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > topN {
		order = order[:topN]
	}
	if order == nil {
		return []string{}
	}
	return order
}
