package sentiment

import (
	"context"
	"errors"

	"github.com/spacesedan/brandpulse/internal/models"
)

type LabelClient interface {
	Classify(ctx context.Context, text string) ([]models.LabelScore, error)
}

// RemoteClassifier asks a hosted inference endpoint and keeps the top label
type RemoteClassifier struct {
	client LabelClient
}

func NewRemoteClassifier(client LabelClient) *RemoteClassifier {
	return &RemoteClassifier{client: client}
}

func (r *RemoteClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	labels, err := r.client.Classify(ctx, text)
	if err != nil {
		return Classification{}, err
	}
	return best(labels)
}

func best(labels []models.LabelScore) (Classification, error) {
	if len(labels) == 0 {
		return Classification{}, errors.New("classifier returned no labels")
	}
	top := labels[0]
	for _, l := range labels[1:] {
		if l.Score > top.Score {
			top = l
		}
	}
	return Classification{Label: top.Label, Score: top.Score}, nil
}
