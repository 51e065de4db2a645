package compiler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/spacesedan/brandpulse/internal/brand"
	"github.com/spacesedan/brandpulse/internal/filter"
	"github.com/spacesedan/brandpulse/internal/models"
	"github.com/spacesedan/brandpulse/internal/normalize"
	"github.com/spacesedan/brandpulse/internal/sources"
	"github.com/spacesedan/brandpulse/internal/storage"
	"github.com/spacesedan/brandpulse/internal/utils"
	"golang.org/x/sync/errgroup"
)

type RedditFetcher interface {
	Fetch(ctx context.Context, brandName string, limit int) (sources.RedditResult, error)
}

type SocialFetcher interface {
	Fetch(ctx context.Context, brandName, mode string, max int) ([]models.SocialRaw, error)
}

type NewsFetcher interface {
	Fetch(ctx context.Context, brandName string, max int) ([]models.NewsRaw, error)
}

type Result struct {
	BrandKey string
	Items    []models.NormalizedItem
	Cached   bool
}

// Compiler fetches every source for a brand, keeps the raw dumps and
// writes one normalized corpus. At most one run per brand key is in flight.
type Compiler struct {
	store  storage.Store
	reddit RedditFetcher
	social SocialFetcher
	news   NewsFetcher
	locks  *utils.KeyedMutex
}

func New(store storage.Store, reddit RedditFetcher, social SocialFetcher, news NewsFetcher) *Compiler {
	return &Compiler{
		store:  store,
		reddit: reddit,
		social: social,
		news:   news,
		locks:  utils.NewKeyedMutex(),
	}
}

// HasCorpus reports whether a compiled corpus already exists for the brand
func (c *Compiler) HasCorpus(ctx context.Context, brandName string) (bool, error) {
	return c.store.Exists(ctx, storage.CompiledKey(brand.Key(brandName), storage.CompiledNormalized))
}

// Compile returns the brand's corpus, fetching it only when none is stored
func (c *Compiler) Compile(ctx context.Context, brandName string, limits models.FetchLimits) (Result, error) {
	if err := brand.Validate(brandName); err != nil {
		return Result{}, err
	}
	key := brand.Key(brandName)

	unlock := c.locks.Lock(key)
	defer unlock()

	corpusKey := storage.CompiledKey(key, storage.CompiledNormalized)
	exists, err := c.store.Exists(ctx, corpusKey)
	if err != nil {
		return Result{}, fmt.Errorf("check corpus cache: %w", err)
	}
	if exists {
		var items []models.NormalizedItem
		if err := storage.GetJSON(ctx, c.store, corpusKey, &items); err != nil {
			return Result{}, fmt.Errorf("load cached corpus: %w", err)
		}
		slog.Info("[Compiler] Corpus already compiled, skipping fetch",
			slog.String("brand_key", key),
			slog.Int("items", len(items)))
		return Result{BrandKey: key, Items: items, Cached: true}, nil
	}

	start := time.Now()
	var (
		byBrand  []models.SocialRaw
		mentions []models.SocialRaw
		reddit   sources.RedditResult
		news     []models.NewsRaw
	)

	// social and reddit failures are absorbed by the connectors; news is fatal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byBrand, err = c.social.Fetch(gctx, brandName, models.SocialModeBy, limits.SocialMax)
		return err
	})
	g.Go(func() error {
		var err error
		mentions, err = c.social.Fetch(gctx, brandName, models.SocialModeMentions, limits.SocialMax)
		return err
	})
	g.Go(func() error {
		var err error
		reddit, err = c.reddit.Fetch(gctx, brandName, limits.RedditLimit)
		return err
	})
	g.Go(func() error {
		var err error
		news, err = c.news.Fetch(gctx, brandName, limits.NewsMax)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("[Compiler] Fetch failed",
			slog.String("brand_key", key),
			slog.String("error", err.Error()))
		return Result{}, err
	}

	social := make([]models.SocialRaw, 0, len(byBrand)+len(mentions))
	social = append(append(social, byBrand...), mentions...)

	if err := c.writeRaw(ctx, key, byBrand, mentions, social, reddit, news); err != nil {
		return Result{}, err
	}

	corpus := make([]models.NormalizedItem, 0, len(social)+len(reddit.Unique)+len(news))
	corpus = append(corpus, normalize.All(social)...)
	corpus = append(corpus, normalize.All(reddit.Unique)...)
	corpus = append(corpus, normalize.All(news)...)
	corpus = filter.UniqueBy(corpus, func(n models.NormalizedItem) string { return n.ID })

	if err := storage.PutJSON(ctx, c.store, corpusKey, corpus); err != nil {
		return Result{}, fmt.Errorf("write corpus: %w", err)
	}

	slog.Info("[Compiler] Compiled corpus",
		slog.String("brand_key", key),
		slog.Int("social_by", len(byBrand)),
		slog.Int("social_mentions", len(mentions)),
		slog.Int("reddit", len(reddit.Unique)),
		slog.Int("news", len(news)),
		slog.Int("total", len(corpus)),
		slog.Duration("elapsed", time.Since(start)))

	return Result{BrandKey: key, Items: corpus}, nil
}

func (c *Compiler) writeRaw(ctx context.Context, key string, byBrand, mentions, social []models.SocialRaw, reddit sources.RedditResult, news []models.NewsRaw) error {
	writes := []struct {
		key   string
		value any
	}{
		{storage.RawKey("twitter", key, models.SocialModeBy), nonNil(byBrand)},
		{storage.RawKey("twitter", key, models.SocialModeMentions), nonNil(mentions)},
		{storage.RawKey("reddit", key, ""), nonNil(reddit.Unique)},
		{storage.RawKey("reddit", key, "filtered"), nonNil(reddit.Filtered)},
		{storage.RawKey("news", key, "news"), nonNil(news)},
		{storage.CompiledKey(key, storage.CompiledSocial), social},
		{storage.CompiledKey(key, storage.CompiledReddit), nonNil(reddit.Unique)},
		{storage.CompiledKey(key, storage.CompiledNews), nonNil(news)},
	}

	for _, w := range writes {
		if err := storage.PutJSON(ctx, c.store, w.key, w.value); err != nil {
			return fmt.Errorf("write %s: %w", w.key, err)
		}
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// LoadCorpus reads a brand's compiled corpus
func LoadCorpus(ctx context.Context, store storage.Store, brandKey string) ([]models.NormalizedItem, error) {
	var items []models.NormalizedItem
	if err := storage.GetJSON(ctx, store, storage.CompiledKey(brandKey, storage.CompiledNormalized), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// LoadDirectory concatenates every JSON array stored under prefix. Files
// that do not decode are skipped with a warning.
func LoadDirectory[T any](ctx context.Context, store storage.Store, prefix string) ([]T, error) {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var all []T
	for _, k := range keys {
		if path.Ext(k) != ".json" {
			continue
		}
		data, err := store.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		var batch []T
		if err := json.Unmarshal(data, &batch); err != nil {
			slog.Warn("[Compiler] Skipping invalid JSON file",
				slog.String("key", k),
				slog.String("error", err.Error()))
			continue
		}
		all = append(all, batch...)
	}
	return all, nil
}
