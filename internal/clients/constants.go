package clients

import (
	"context"
	"time"
)

const (
	MAX_RETRIES     = 5
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 32 * time.Second
	USER_AGENT      = "brandpulse-client/1.0 (+https://github.com/spacesedan/brandpulse)"

	DEFAULT_HTTP_TIMEOUT = 30 * time.Second
)

func nextBackoff(backoff time.Duration) time.Duration {
	backoff *= 2
	if backoff > MAX_BACKOFF {
		backoff = MAX_BACKOFF
	}
	return backoff
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
