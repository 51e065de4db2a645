package models

// RedditListing is the envelope Reddit wraps search results and comment trees in
type RedditListing struct {
	Kind string            `json:"kind"`
	Data RedditListingData `json:"data"`
}

type RedditListingData struct {
	After    string        `json:"after"`
	Children []RedditThing `json:"children"`
}

// RedditThing is a listing child. Kind t3 is a post, t1 a comment.
type RedditThing struct {
	Kind string          `json:"kind"`
	Data RedditThingData `json:"data"`
}

type RedditThingData struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Body        string  `json:"body"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
}

const (
	RedditKindComment = "t1"
	RedditKindPost    = "t3"
)
