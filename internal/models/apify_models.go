package models

// ApifyTweetInput is the run input of the tweet scraper actor
type ApifyTweetInput struct {
	TwitterContent string `json:"twitterContent"`
	MaxItems       int    `json:"maxItems"`
	QueryType      string `json:"queryType"`
	Lang           string `json:"lang"`
}

// ApifyTweet is one dataset item. Actor versions disagree on field names so
// the text and author have several candidates.
type ApifyTweet struct {
	FullText       string `json:"full_text"`
	Text           string `json:"text"`
	TweetText      string `json:"tweet_text"`
	Content        string `json:"content"`
	UserScreenName string `json:"user_screen_name"`
	Author         struct {
		UserName string `json:"userName"`
	} `json:"author"`
	CreatedAt    string `json:"created_at"`
	CreatedAtAlt string `json:"createdAt"`
	LikeCount    int    `json:"likeCount"`
	RetweetCount int    `json:"retweetCount"`
	ReplyCount   int    `json:"replyCount"`
	URL          string `json:"url"`
}
