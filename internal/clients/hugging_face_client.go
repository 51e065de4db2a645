package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spacesedan/brandpulse/internal/models"
)

// HuggingFaceClient calls a hosted text-classification endpoint, either the
// Inference API or a dedicated endpoint serving the same model.
type HuggingFaceClient struct {
	Endpoint string
	Token    string
	Client   *http.Client
	backoff  time.Duration
}

func NewHuggingFaceClient(endpoint, token string, timeout time.Duration) *HuggingFaceClient {
	if timeout <= 0 {
		timeout = DEFAULT_HTTP_TIMEOUT
	}
	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.String("endpoint", endpoint),
		slog.Duration("timeout", timeout))
	return &HuggingFaceClient{
		Endpoint: endpoint,
		Token:    token,
		Client:   &http.Client{Timeout: timeout},
		backoff:  INITIAL_BACKOFF,
	}
}

// Classify returns the labels the model emitted for text, best first
func (h *HuggingFaceClient) Classify(ctx context.Context, text string) ([]models.LabelScore, error) {
	var raw json.RawMessage
	headers := map[string]string{}
	if h.Token != "" {
		headers["Authorization"] = "Bearer " + h.Token
	}

	start := time.Now()
	err := postJSON(ctx, h.Client, "HuggingFaceClient", h.Endpoint, headers, h.backoff, true,
		models.ClassificationRequest{Inputs: text}, &raw)
	if err != nil {
		slog.Error("[HuggingFaceClient] Classification request failed",
			slog.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	labels, err := decodeLabels(raw)
	if err != nil {
		return nil, err
	}
	slog.Debug("[HuggingFaceClient] Classification request successful",
		slog.Duration("elapsed", time.Since(start)))
	return labels, nil
}

// decodeLabels accepts both [[{label,score}]] and [{label,score}]
func decodeLabels(raw json.RawMessage) ([]models.LabelScore, error) {
	var nested [][]models.LabelScore
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, errors.New("empty classification response")
		}
		return nested[0], nil
	}

	var flat []models.LabelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal classification response: %w", err)
	}
	return flat, nil
}

// postJSON posts input as JSON and decodes the reply into output, retrying
// network errors, 429 and 5xx with exponential backoff. A client timeout is
// only retried when retryTimeouts is set.
func postJSON(ctx context.Context, client *http.Client, component, endpoint string, headers map[string]string, backoff time.Duration, retryTimeouts bool, input, output any) error {
	body, err := json.Marshal(input)
	if err != nil {
		slog.Error("["+component+"] Failed to marshal input",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	var resp *http.Response
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err = client.Do(req)
		if err == nil && resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryTimeouts && isTimeout(err) {
			slog.Error("["+component+"] Request timed out, not retrying",
				slog.Duration("timeout", client.Timeout))
			return fmt.Errorf("request timed out after %s: %w", client.Timeout, err)
		}

		slog.Warn("["+component+"] Request failed, will retry",
			slog.Int("attempt", attempt),
			slog.String("error", errMsg(err, resp)))

		if resp != nil {
			drain(resp)
		}
		if attempt == MAX_RETRIES {
			return fmt.Errorf("request failed after retries: %s", errMsg(err, resp))
		}
		if err := sleepCtx(ctx, backoff); err != nil {
			return err
		}
		backoff = nextBackoff(backoff)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		slog.Error("["+component+"] Request rejected",
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("["+component+"] Failed to unmarshal response",
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}

// HealthCheck sends a single short classification request without retrying
func (h *HuggingFaceClient) HealthCheck(ctx context.Context) error {
	body, err := json.Marshal(models.ClassificationRequest{Inputs: "ok"})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] health check failed: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("[HuggingFaceClient] health check returned %d", resp.StatusCode)
	}
	return nil
}
