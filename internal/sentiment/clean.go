package sentiment

import (
	"html"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern          = regexp.MustCompile(`http\S+|www.\S+`)
	handlePattern       = regexp.MustCompile(`@\w+|#\w+`)
	tagPattern          = regexp.MustCompile(`<[^>]*>`)
	disallowedPattern   = regexp.MustCompile(`[^a-zA-Z0-9\s.,!?]`)
	// "1. " and "2024. " at line start would become list items and lose the number
	listMarkerPattern = regexp.MustCompile(`(?m)^([ \t]{0,3}\d+)([.)])([ \t])`)
)

// RemoveLinks keeps the text of markdown links and drops bare URLs
func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting markup.
// Ordered list markers are escaped so their numbers stay in the text.
func ConvertMarkdownToText(input string) string {
	input = listMarkerPattern.ReplaceAllString(input, `$1\$2$3`)
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.UseXHTML,
	})
	output := blackfriday.Run([]byte(input),
		blackfriday.WithNoExtensions(),
		blackfriday.WithRenderer(renderer))

	plain := tagPattern.ReplaceAllString(string(output), " ")
	return html.UnescapeString(plain)
}

// CleanText prepares text for both scorers. Links, mentions and hashtags
// go first so markdown never sees a leading '#' as a heading.
func CleanText(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	text = RemoveLinks(text)
	text = handlePattern.ReplaceAllString(text, "")
	text = ConvertMarkdownToText(text)
	text = disallowedPattern.ReplaceAllString(text, "")

	return strings.Join(strings.Fields(text), " ")
}
