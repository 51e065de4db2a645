package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	ErrNotFound = errors.New("storage: key not found")
	// ErrInvalidData wraps values that exist but do not decode
	ErrInvalidData = errors.New("storage: invalid data")
)

// Store is a key-addressed blob store. Keys are slash separated relative
// paths such as "compiled/acme/news.json".
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	// List returns every key under prefix, sorted
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// Raw and compiled file names
const (
	CompiledSocial     = "twitter"
	CompiledReddit     = "reddit"
	CompiledNews       = "news"
	CompiledNormalized = "compiled_normalized"

	ResultsCSV    = "sentiment_analysis_results.csv"
	InsightsJSON  = "insights.json"
	SummaryReport = "summary_report.txt"
)

// RawKey is where a connector's raw dump for a brand lives
func RawKey(source, brandKey, suffix string) string {
	name := brandKey
	if suffix != "" {
		name += "_" + suffix
	}
	return path.Join(source, name+".json")
}

func CompiledKey(brandKey, name string) string {
	return path.Join("compiled", brandKey, name+".json")
}

func AnalysisPrefix(brandKey string) string {
	return path.Join("sentiment_analysis", brandKey)
}

func AnalysisKey(brandKey, file string) string {
	return path.Join(AnalysisPrefix(brandKey), file)
}

// ValidKey rejects keys that could escape the store root
func ValidKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return fmt.Errorf("storage: invalid key %q", key)
		}
	}
	return nil
}

// GetJSON decodes the value at key into v
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w at %s: %w", ErrInvalidData, key, err)
	}
	return nil
}

// PutJSON writes v as indented JSON
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return s.Put(ctx, key, data)
}
