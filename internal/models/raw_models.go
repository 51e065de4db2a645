package models

// Source tags where a record came from
type Source string

const (
	SourceReddit Source = "reddit"
	SourceSocial Source = "social"
	SourceNews   Source = "news"
)

// RawItem is one record as a connector produced it. The set of
// implementations is closed: RedditRaw, SocialRaw and NewsRaw.
type RawItem interface {
	Source() Source
	rawItem()
}

// Reddit item types
const (
	RedditTypePost    = "post"
	RedditTypeComment = "comment"
)

// RedditRaw is a post or a top-level comment collected by the Reddit connector
type RedditRaw struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio,omitempty"`
	NumComments int     `json:"num_comments,omitempty"`
	CreatedUTC  string  `json:"created_utc"`
	URL         string  `json:"url,omitempty"`
	Permalink   string  `json:"permalink"`
	Selftext    string  `json:"selftext"`
	Type        string  `json:"type"`
	ParentPost  string  `json:"parent_post,omitempty"`
	SearchQuery string  `json:"search_query"`
}

func (RedditRaw) Source() Source { return SourceReddit }
func (RedditRaw) rawItem()       {}

// Social search modes
const (
	SocialModeBy       = "by"
	SocialModeMentions = "mentions"
)

// SocialRaw is a post returned by the social-mentions actor
type SocialRaw struct {
	User       string `json:"user"`
	Text       string `json:"text"`
	CreatedAt  string `json:"created_at"`
	Likes      int    `json:"likes"`
	Retweets   int    `json:"retweets"`
	Replies    int    `json:"replies"`
	Engagement int    `json:"engagement"`
	URL        string `json:"url"`
	Mode       string `json:"mode,omitempty"`
}

func (SocialRaw) Source() Source { return SourceSocial }
func (SocialRaw) rawItem()       {}

// NewsRaw is an article returned by the news search
type NewsRaw struct {
	Title       string `json:"title"`
	Outlet      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

func (NewsRaw) Source() Source { return SourceNews }
func (NewsRaw) rawItem()       {}
