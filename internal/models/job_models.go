package models

import "time"

type JobStatus string

const (
	JobQueued             JobStatus = "queued"
	JobScraping           JobStatus = "scraping"
	JobAnalyzing          JobStatus = "analyzing"
	JobGeneratingInsights JobStatus = "generating_insights"
	JobCompleted          JobStatus = "completed"
	JobFailed             JobStatus = "failed"
)

// Terminal reports whether no further transitions are possible
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

type Job struct {
	JobID       string     `json:"job_id"`
	BrandName   string     `json:"brand_name"`
	Status      JobStatus  `json:"status"`
	Progress    string     `json:"progress"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ResultsPath string     `json:"results_path,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// FetchLimits bounds how much each connector fetches in one run
type FetchLimits struct {
	SocialMax   int `json:"twitter_max"`
	NewsMax     int `json:"news_max"`
	RedditLimit int `json:"reddit_limit"`
}

type AnalyzeRequest struct {
	BrandName string `json:"brand_name"`
	FetchLimits
}

type AnalyzeResponse struct {
	JobID          string    `json:"job_id,omitempty"`
	BrandName      string    `json:"brand_name"`
	Status         JobStatus `json:"status"`
	Message        string    `json:"message"`
	CheckStatusURL string    `json:"check_status_url,omitempty"`
	ResultsPath    string    `json:"results_path,omitempty"`
}
