package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spacesedan/brandpulse/internal/clients"
)

const VALKEY_KEY_PREFIX = "brandpulse:"

// ValkeyStore keeps values under VALKEY_KEY_PREFIX + key, letting several
// API instances share one cache.
type ValkeyStore struct {
	vc *clients.ValkeyClient
}

func NewValkeyStore(vc *clients.ValkeyClient) *ValkeyStore {
	return &ValkeyStore{vc: vc}
}

func (v *ValkeyStore) Exists(ctx context.Context, key string) (bool, error) {
	return v.vc.Exists(ctx, VALKEY_KEY_PREFIX+key)
}

func (v *ValkeyStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, found, err := v.vc.Get(ctx, VALKEY_KEY_PREFIX+key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, nil
}

func (v *ValkeyStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ValidKey(key); err != nil {
		return err
	}
	return v.vc.Set(ctx, VALKEY_KEY_PREFIX+key, data)
}

func (v *ValkeyStore) List(ctx context.Context, prefix string) ([]string, error) {
	pattern := VALKEY_KEY_PREFIX + "*"
	if prefix != "" {
		pattern = VALKEY_KEY_PREFIX + escapeGlob(strings.TrimSuffix(prefix, "/")) + "/*"
	}

	raw, err := v.vc.Keys(ctx, pattern)
	if err != nil {
		return nil, err
	}

	// SCAN may return a key more than once
	seen := make(map[string]struct{}, len(raw))
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.TrimPrefix(k, VALKEY_KEY_PREFIX)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (v *ValkeyStore) Delete(ctx context.Context, key string) error {
	return v.vc.Del(ctx, VALKEY_KEY_PREFIX+key)
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
