package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/brandpulse/internal/models"
)

func newTestRedditClient(srv *httptest.Server) *RedditClient {
	return &RedditClient{
		BaseURL:   srv.URL,
		UserAgent: "test",
		client:    srv.Client(),
		backoff:   time.Millisecond,
	}
}

func TestRedditSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/r/reviews/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "acme review" || q.Get("limit") != "25" || q.Get("t") != "year" || q.Get("restrict_sr") != "true" {
			t.Errorf("unexpected query %v", q)
		}
		w.Write([]byte(`{"kind":"Listing","data":{"children":[
			{"kind":"t3","data":{"title":"Acme is fine","author":"bob","score":12,"created_utc":1700000000,"permalink":"/r/reviews/comments/1/acme/"}},
			{"kind":"more","data":{}}
		]}}`))
	}))
	defer srv.Close()

	posts, err := newTestRedditClient(srv).Search(context.Background(), "reviews", "acme review", 25, "year")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Acme is fine" || posts[0].Score != 12 {
		t.Errorf("Search() = %+v", posts)
	}
}

func TestRedditSearchAllOmitsRestrict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("restrict_sr") {
			t.Error("restrict_sr set for r/all")
		}
		w.Write([]byte(`{"data":{"children":[]}}`))
	}))
	defer srv.Close()

	if _, err := newTestRedditClient(srv).Search(context.Background(), "all", "acme", 5, "year"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
}

func TestRedditTopComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/r/reviews/comments/1/acme" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[
			{"data":{"children":[{"kind":"t3","data":{"title":"post"}}]}},
			{"data":{"children":[
				{"kind":"t1","data":{"body":"first","score":3}},
				{"kind":"t1","data":{"body":"second","score":2}},
				{"kind":"t1","data":{"body":"third","score":1}},
				{"kind":"more","data":{}}
			]}}
		]`))
	}))
	defer srv.Close()

	comments, err := newTestRedditClient(srv).TopComments(context.Background(), "/r/reviews/comments/1/acme/", 2)
	if err != nil {
		t.Fatalf("TopComments() error = %v", err)
	}
	if len(comments) != 2 || comments[0].Body != "first" || comments[1].Body != "second" {
		t.Errorf("TopComments() = %+v", comments)
	}
}

func TestRedditRetriesTooManyRequests(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data":{"children":[{"kind":"t3","data":{"title":"ok"}}]}}`))
	}))
	defer srv.Close()

	posts, err := newTestRedditClient(srv).Search(context.Background(), "all", "acme", 5, "year")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(posts) != 1 || atomic.LoadInt32(&calls) != 2 {
		t.Errorf("posts = %d calls = %d, want 1 and 2", len(posts), calls)
	}
}

func TestRedditUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := newTestRedditClient(srv).Search(context.Background(), "all", "acme", 5, "year"); err == nil {
		t.Fatal("Search() error = nil, want status error")
	}
}

func TestNewsEverything(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/v2/everything" || q.Get("q") != "acme" || q.Get("sortBy") != "relevancy" || q.Get("pageSize") != "10" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		if q.Get("from") != "2024-03-01" || q.Get("to") != "2024-03-08" {
			t.Errorf("date range = %s..%s", q.Get("from"), q.Get("to"))
		}
		if r.Header.Get("X-Api-Key") != "key" {
			t.Error("missing api key header")
		}
		w.Write([]byte(`{"status":"ok","totalResults":1,"articles":[{"source":{"name":"Wire"},"title":"Acme grows","url":"https://n/1"}]}`))
	}))
	defer srv.Close()

	c := NewNewsAPIClient("key", time.Second)
	c.BaseURL = srv.URL
	res, err := c.Everything(context.Background(), EverythingQuery{
		Query:    "acme",
		From:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		Language: "en",
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("Everything() error = %v", err)
	}
	if len(res.Articles) != 1 || res.Articles[0].Source.Name != "Wire" {
		t.Errorf("Everything() = %+v", res)
	}
}

func TestNewsEverythingNon200IsErrNewsAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid"}`))
	}))
	defer srv.Close()

	c := NewNewsAPIClient("bad", time.Second)
	c.BaseURL = srv.URL
	_, err := c.Everything(context.Background(), EverythingQuery{Query: "acme", PageSize: 5})
	if !errors.Is(err, ErrNewsAPI) {
		t.Fatalf("error = %v, want ErrNewsAPI", err)
	}
	if !strings.Contains(err.Error(), "Your API key is invalid") {
		t.Errorf("error %q does not carry the API message", err)
	}
}

func TestNewsEverythingMissingKey(t *testing.T) {
	_, err := NewNewsAPIClient("", time.Second).Everything(context.Background(), EverythingQuery{Query: "acme"})
	if !errors.Is(err, ErrNewsAPI) {
		t.Fatalf("error = %v, want ErrNewsAPI", err)
	}
}

func TestApifyRunTweetSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/acts/actor/run-sync-get-dataset-items" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("token") != "tok" {
			t.Error("missing token")
		}
		var in models.ApifyTweetInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode input: %v", err)
			return
		}
		if in.TwitterContent != "@acme" || in.MaxItems != 10 || in.QueryType != "Latest" || in.Lang != "en" {
			t.Errorf("input = %+v", in)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"full_text":"hello acme","user_screen_name":"bob","likeCount":2}]`))
	}))
	defer srv.Close()

	c := NewApifyClient("tok", "actor", time.Second)
	c.BaseURL = srv.URL
	tweets, err := c.RunTweetSearch(context.Background(), "@acme", 10)
	if err != nil {
		t.Fatalf("RunTweetSearch() error = %v", err)
	}
	if len(tweets) != 1 || tweets[0].FullText != "hello acme" || tweets[0].LikeCount != 2 {
		t.Errorf("RunTweetSearch() = %+v", tweets)
	}
}

func TestApifyTimeoutIsNotRetried(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewApifyClient("tok", "actor", 50*time.Millisecond)
	c.BaseURL = srv.URL
	c.backoff = time.Millisecond

	if _, err := c.RunTweetSearch(context.Background(), "@acme", 10); err == nil {
		t.Fatal("RunTweetSearch() error = nil, want timeout")
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("actor runs started = %d, want 1", got)
	}
}

func TestNewApifyClientDefaultTimeout(t *testing.T) {
	if got := NewApifyClient("tok", "", 0).Client.Timeout; got != APIFY_SYNC_TIMEOUT {
		t.Errorf("Client.Timeout = %v, want %v", got, APIFY_SYNC_TIMEOUT)
	}
}

func TestHuggingFaceClassify(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"nested", `[[{"label":"POSITIVE","score":0.98},{"label":"NEGATIVE","score":0.02}]]`},
		{"flat", `[{"label":"POSITIVE","score":0.98}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer tok" {
					t.Error("missing bearer token")
				}
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			labels, err := NewHuggingFaceClient(srv.URL, "tok", time.Second).Classify(context.Background(), "great")
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if len(labels) == 0 || labels[0].Label != "POSITIVE" || labels[0].Score != 0.98 {
				t.Errorf("Classify() = %+v", labels)
			}
		})
	}
}

func TestHuggingFaceRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"label":"NEGATIVE","score":0.7}]`))
	}))
	defer srv.Close()

	c := NewHuggingFaceClient(srv.URL, "", time.Second)
	c.backoff = time.Millisecond
	labels, err := c.Classify(context.Background(), "bad")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if labels[0].Label != "NEGATIVE" || atomic.LoadInt32(&calls) != 3 {
		t.Errorf("labels = %+v calls = %d", labels, calls)
	}
}

func TestHuggingFaceClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if _, err := NewHuggingFaceClient(srv.URL, "", time.Second).Classify(context.Background(), "x"); err == nil {
		t.Fatal("Classify() error = nil, want status error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestHuggingFaceHealthCheck(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	c := NewHuggingFaceClient(srv.URL, "tok", time.Second)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	status.Store(http.StatusServiceUnavailable)
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() error = nil on 503")
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("calls = %d, want 2 (no retries)", n)
	}
}
