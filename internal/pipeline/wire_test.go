package pipeline

import (
	"context"
	"testing"

	"github.com/spacesedan/brandpulse/config"
	"github.com/spacesedan/brandpulse/internal/jobs"
	"github.com/spacesedan/brandpulse/internal/storage"
)

func TestBuildLocalBackends(t *testing.T) {
	cfg := config.Config{
		DataDir:   t.TempDir(),
		StoreKind: config.StoreFile,
		JobStore:  config.StoreMemory,
		Sentiment: config.SentimentConfig{Backend: config.BackendVader},
		Reddit:    config.RedditConfig{RequestsPerMinute: 60},
	}

	d, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer d.Close()

	if _, ok := d.Store.(*storage.FileStore); !ok {
		t.Errorf("Store = %T, want *storage.FileStore", d.Store)
	}
	if _, ok := d.JobStore.(*jobs.MemoryStore); !ok {
		t.Errorf("JobStore = %T, want *jobs.MemoryStore", d.JobStore)
	}
	if d.Pipeline == nil {
		t.Error("Pipeline not built")
	}
}
