package brand

import (
	"errors"
	"fmt"
	"strings"
)

// Key returns the storage identity of a brand name: trimmed, lowercased,
// with spaces replaced by underscores. "Acme Corp" and " acme corp" share a key.
func Key(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

var ErrInvalidName = errors.New("brand: invalid brand name")

// Validate rejects names whose key is empty or could step outside a
// per-brand storage directory.
func Validate(name string) error {
	key := Key(name)
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
