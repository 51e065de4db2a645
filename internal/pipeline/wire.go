package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/brandpulse/config"
	"github.com/spacesedan/brandpulse/internal/analysis"
	"github.com/spacesedan/brandpulse/internal/clients"
	"github.com/spacesedan/brandpulse/internal/clients/kafka_client"
	"github.com/spacesedan/brandpulse/internal/compiler"
	"github.com/spacesedan/brandpulse/internal/db"
	"github.com/spacesedan/brandpulse/internal/jobs"
	"github.com/spacesedan/brandpulse/internal/monitoring"
	"github.com/spacesedan/brandpulse/internal/sentiment"
	"github.com/spacesedan/brandpulse/internal/sources"
	"github.com/spacesedan/brandpulse/internal/storage"
)

// Deps is everything a binary needs to run analyses
type Deps struct {
	Pipeline *Pipeline
	Store    storage.Store
	JobStore jobs.Store
	Health   *monitoring.Status

	closers []func()
}

// Close releases connections in reverse order of creation
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// Build connects the configured backends and assembles the pipeline. Health
// probes for remote dependencies run until ctx is done.
func Build(ctx context.Context, cfg config.Config) (_ *Deps, err error) {
	d := &Deps{Health: monitoring.NewStatus()}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	var vc *clients.ValkeyClient
	if cfg.StoreKind == config.StoreValkey || cfg.JobStore == config.StoreValkey {
		vc, err = clients.NewValkeyClient(ctx, clients.ValkeyOptions{
			Address:  cfg.Valkey.Address,
			Password: cfg.Valkey.Password,
			TLS:      cfg.Valkey.TLS,
		})
		if err != nil {
			return nil, fmt.Errorf("connect valkey: %w", err)
		}
		d.closers = append(d.closers, vc.Close)
		d.Health.Watch(ctx, "valkey", vc.Ping, monitoring.HEALTHCHECK_TIMER)
	}

	switch cfg.StoreKind {
	case config.StoreValkey:
		d.Store = storage.NewValkeyStore(vc)
	case config.StoreMemory:
		d.Store = storage.NewMemoryStore()
	default:
		d.Store = storage.NewFileStore(cfg.DataDir)
	}

	if cfg.JobStore == config.StoreValkey {
		d.JobStore = jobs.NewValkeyStore(vc)
	} else {
		d.JobStore = jobs.NewMemoryStore()
	}

	classifier, err := d.classifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sinks, err := d.sinks(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reddit := sources.NewReddit(
		clients.NewRedditClient(clients.RedditOptions{
			ClientID:          cfg.Reddit.ClientID,
			ClientSecret:      cfg.Reddit.ClientSecret,
			UserAgent:         cfg.Reddit.UserAgent,
			Timeout:           cfg.HTTPTimeout,
			RequestsPerMinute: cfg.Reddit.RequestsPerMinute,
		}),
		sources.RedditOptions{
			TimeFilter:      cfg.Reddit.TimeFilter,
			MinScore:        cfg.Reddit.MinScore,
			IncludeComments: cfg.Reddit.IncludeComments,
			UseCommunities:  cfg.Reddit.UseCommunities,
			Communities:     cfg.Reddit.Subreddits,
			ExcludeKeywords: cfg.Reddit.ExcludeKeywords,
		})
	social := sources.NewSocial(clients.NewApifyClient(cfg.Apify.Token, cfg.Apify.ActorID, cfg.Apify.Timeout))
	news := sources.NewNews(clients.NewNewsAPIClient(cfg.News.APIKey, cfg.HTTPTimeout), cfg.News.LookbackDays, cfg.News.Language)

	d.Pipeline = New(
		compiler.New(d.Store, reddit, social, news),
		analysis.New(d.Store, sentiment.NewScorer(classifier, sentiment.DEFAULT_WORKERS), sinks...),
	)

	slog.Info("[Pipeline] Dependencies ready",
		slog.String("store", cfg.StoreKind),
		slog.String("job_store", cfg.JobStore),
		slog.String("sentiment_backend", cfg.Sentiment.Backend),
		slog.Int("sinks", len(sinks)))
	return d, nil
}

func (d *Deps) classifier(ctx context.Context, cfg config.Config) (sentiment.Classifier, error) {
	switch cfg.Sentiment.Backend {
	case config.BackendHugot:
		h, err := sentiment.NewHugotClassifier(cfg.Sentiment.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("load sentiment model: %w", err)
		}
		d.closers = append(d.closers, func() {
			if err := h.Close(); err != nil {
				slog.Warn("[Pipeline] Failed to close model session", slog.String("error", err.Error()))
			}
		})
		return h, nil
	case config.BackendHTTP:
		hf := clients.NewHuggingFaceClient(cfg.Sentiment.Endpoint, cfg.Sentiment.Token, cfg.HTTPTimeout)
		d.Health.Watch(ctx, "sentiment_model", hf.HealthCheck, monitoring.HEALTHCHECK_TIMER)
		return sentiment.NewRemoteClassifier(hf), nil
	default:
		return sentiment.LexiconClassifier{}, nil
	}
}

func (d *Deps) sinks(ctx context.Context, cfg config.Config) ([]analysis.Sink, error) {
	var sinks []analysis.Sink

	if cfg.DynamoDB.Table != "" {
		client, err := clients.NewDynamoDBClient(ctx, cfg.DynamoDB.Region, cfg.DynamoDB.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("dynamodb client: %w", err)
		}
		sinks = append(sinks, db.NewSentimentTable(client, cfg.DynamoDB.Table))
	}

	kcfg := kafka_client.KafkaConfig{Broker: cfg.Kafka.Broker, Topic: cfg.Kafka.Topic}
	if kcfg.Enabled() {
		publisher, err := kafka_client.NewInsightsPublisher(kcfg)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, publisher.Close)
		sinks = append(sinks, publisher)
	}

	return sinks, nil
}
