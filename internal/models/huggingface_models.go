package models

type ClassificationRequest struct {
	Inputs string `json:"inputs"`
}

// LabelScore is a single label emitted by a text classifier
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
