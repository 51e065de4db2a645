package sources

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spacesedan/brandpulse/internal/clients"
	"github.com/spacesedan/brandpulse/internal/models"
)

type fakeReddit struct {
	posts     map[string][]models.RedditThingData // keyed by subreddit|query
	failQuery string
	comments  map[string][]models.RedditThingData // keyed by permalink
	searches  []string
}

func (f *fakeReddit) Search(_ context.Context, subreddit, query string, _ int, _ string) ([]models.RedditThingData, error) {
	f.searches = append(f.searches, subreddit+"|"+query)
	if query == f.failQuery {
		return nil, errors.New("boom")
	}
	return f.posts[subreddit+"|"+query], nil
}

func (f *fakeReddit) TopComments(_ context.Context, permalink string, _ int) ([]models.RedditThingData, error) {
	return f.comments[permalink], nil
}

var longBody = strings.Repeat("acme support helped me out ", 3)

func TestRedditFetchDedupRelevanceAndComments(t *testing.T) {
	api := &fakeReddit{
		posts: map[string][]models.RedditThingData{
			"all|Acme": {
				{Title: "Acme refund story", Permalink: "/r/a/1/", Score: 10, CreatedUTC: 1700000000},
				{Title: "Unrelated", Selftext: "nothing here", Permalink: "/r/a/2/", Score: 50},
			},
			"all|Acme review": {
				{Title: "Acme refund story again", Permalink: "/r/a/1/", Score: 10},
				{Title: "Console deals", Selftext: "acme controller", Permalink: "/r/a/3/", Score: 5},
				{Title: "Acme low score", Permalink: "/r/a/4/", Score: 1},
			},
		},
		failQuery: "Acme experience",
		comments: map[string][]models.RedditThingData{
			"/r/a/1/": {
				{Body: longBody, Permalink: "/r/a/1/c1/", Score: 4},
				{Body: "too short", Permalink: "/r/a/1/c2/", Score: 9},
				{Body: longBody, Permalink: "/r/a/1/c3/", Score: 9},
			},
		},
	}

	r := NewReddit(api, RedditOptions{MinScore: 5, IncludeComments: true})
	res, err := r.Fetch(context.Background(), "Acme", 25)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	wantUnique := []string{
		"https://reddit.com/r/a/1/",
		"https://reddit.com/r/a/1/c1/",
		"https://reddit.com/r/a/4/",
	}
	if len(res.Unique) != len(wantUnique) {
		t.Fatalf("unique = %+v", res.Unique)
	}
	for i, p := range wantUnique {
		if res.Unique[i].Permalink != p {
			t.Errorf("Unique[%d] = %q, want %q", i, res.Unique[i].Permalink, p)
		}
	}
	if res.Unique[0].Title != "Acme refund story" {
		t.Errorf("first occurrence did not win: %q", res.Unique[0].Title)
	}

	c := res.Unique[1]
	if c.Type != models.RedditTypeComment || c.ParentPost != "Acme refund story" || c.Title != "Comment on: Acme refund story" {
		t.Errorf("comment fields = %+v", c)
	}
	if res.Unique[0].CreatedUTC != "2023-11-14 22:13:20" {
		t.Errorf("CreatedUTC = %q", res.Unique[0].CreatedUTC)
	}

	if len(res.Filtered) != 1 || res.Filtered[0].Permalink != wantUnique[0] {
		t.Errorf("Filtered = %+v", res.Filtered)
	}
	if len(api.searches) != 4 {
		t.Errorf("searches = %v, want 4 queries against r/all", api.searches)
	}
}

func TestRedditFetchCommunities(t *testing.T) {
	api := &fakeReddit{}
	r := NewReddit(api, RedditOptions{UseCommunities: true, Communities: []string{"reviews", "jobs"}})
	if _, err := r.Fetch(context.Background(), "Acme", 5); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(api.searches) != 8 {
		t.Fatalf("searches = %d, want 4 queries x 2 communities", len(api.searches))
	}
	if api.searches[0] != "reviews|Acme" || api.searches[1] != "jobs|Acme" {
		t.Errorf("search order = %v", api.searches[:2])
	}
}

type fakeTweets struct {
	tweets []models.ApifyTweet
	err    error
	query  string
	max    int
}

func (f *fakeTweets) RunTweetSearch(_ context.Context, query string, max int) ([]models.ApifyTweet, error) {
	f.query, f.max = query, max
	return f.tweets, f.err
}

func TestSocialFetchBy(t *testing.T) {
	api := &fakeTweets{tweets: []models.ApifyTweet{
		{Text: "  new drop  ", UserScreenName: "acme", LikeCount: 1, RetweetCount: 2, ReplyCount: 3},
		{Content: "fallback text"},
	}}

	got, err := NewSocial(api).Fetch(context.Background(), "Acme Corp", models.SocialModeBy, 10)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if api.query != "from:AcmeCorp -filter:replies -filter:retweets" || api.max != 10 {
		t.Errorf("query = %q max = %d", api.query, api.max)
	}
	if got[0].Text != "new drop" || got[0].Engagement != 6 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Text != "fallback text" {
		t.Errorf("text fallback = %q", got[1].Text)
	}
}

func TestSocialFetchMentionsRanksByEngagement(t *testing.T) {
	var tweets []models.ApifyTweet
	for i := 0; i < 30; i++ {
		tweets = append(tweets, models.ApifyTweet{Text: "t", LikeCount: i % 5})
	}
	api := &fakeTweets{tweets: tweets}

	got, err := NewSocial(api).Fetch(context.Background(), "acme", models.SocialModeMentions, 15)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if api.query != "@acme" || api.max != 30 {
		t.Errorf("query = %q max = %d", api.query, api.max)
	}
	if len(got) != SOCIAL_MENTIONS_TOP_N {
		t.Fatalf("len = %d, want %d", len(got), SOCIAL_MENTIONS_TOP_N)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Engagement > got[i-1].Engagement {
			t.Fatalf("not sorted by engagement at %d", i)
		}
	}
}

func TestSocialFetchFailureYieldsNothing(t *testing.T) {
	got, err := NewSocial(&fakeTweets{err: errors.New("actor down")}).Fetch(context.Background(), "acme", models.SocialModeBy, 5)
	if err != nil || len(got) != 0 {
		t.Errorf("Fetch() = %v, %v; want empty, nil", got, err)
	}
}

func TestSocialFetchInvalidMode(t *testing.T) {
	if _, err := NewSocial(&fakeTweets{}).Fetch(context.Background(), "acme", "likes", 5); err == nil {
		t.Error("Fetch() error = nil for unknown mode")
	}
}

type fakeNews struct {
	res *models.NewsAPIEverythingResponse
	err error
	got clients.EverythingQuery
}

func (f *fakeNews) Everything(_ context.Context, q clients.EverythingQuery) (*models.NewsAPIEverythingResponse, error) {
	f.got = q
	return f.res, f.err
}

func TestNewsFetch(t *testing.T) {
	res := &models.NewsAPIEverythingResponse{Articles: []models.NewsAPIArticle{{Title: "Acme grows", URL: "https://n/1"}}}
	res.Articles[0].Source.Name = "Wire"
	api := &fakeNews{res: res}

	n := NewNews(api, 7, "en")
	n.now = func() time.Time { return time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC) }

	got, err := n.Fetch(context.Background(), "acme", 20)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1 || got[0].Outlet != "Wire" {
		t.Errorf("Fetch() = %+v", got)
	}
	if api.got.PageSize != 20 || api.got.From.Day() != 1 || api.got.To.Day() != 8 {
		t.Errorf("query = %+v", api.got)
	}
}

func TestNewsFetchErrorPropagates(t *testing.T) {
	_, err := NewNews(&fakeNews{err: clients.ErrNewsAPI}, 7, "en").Fetch(context.Background(), "acme", 5)
	if !errors.Is(err, clients.ErrNewsAPI) {
		t.Errorf("error = %v, want ErrNewsAPI", err)
	}
}
