package models

// NormalizedItem is the common record every source is mapped into
type NormalizedItem struct {
	ID         string `json:"id"`
	Source     Source `json:"source"`
	Author     string `json:"author"`
	Text       string `json:"text"`
	CreatedAt  string `json:"created_at"`
	URL        string `json:"url"`
	Score      int    `json:"score"`
	Engagement int    `json:"engagement"`
	Likes      int    `json:"likes"`
	Retweets   int    `json:"retweets,omitempty"`
	Replies    int    `json:"replies,omitempty"`
	Subreddit  string `json:"subreddit"`
	Type       string `json:"type,omitempty"`
	ParentPost string `json:"parent_post,omitempty"`
}
