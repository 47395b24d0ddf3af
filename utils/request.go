package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultRetryTimes    = 5
	DefaultRetryInterval = 100 * time.Millisecond
	DefaultTimeout       = 5 * time.Second
)

// HTTPStatusError is returned when the server answers with a non-200 status.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("request returned status %d: %s", e.StatusCode, e.Body)
}

// Client errors are not worth retrying, except rate limiting.
func retryable(err error) error {
	if se, ok := err.(*HTTPStatusError); ok {
		if se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
	}
	return err
}

func retryPolicy(ctx context.Context, retry int) backoff.BackOff {
	if retry < 1 {
		retry = 1
	}
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(DefaultRetryInterval), uint64(retry-1)),
		ctx,
	)
}

func GetUrlResponse(ctx context.Context, url string, params map[string]string, result any, logger *slog.Logger) error {
	return GetUrlResponseWithRetry(ctx, url, params, result, 1, logger)
}

func GetUrlResponseWithRetry(ctx context.Context, rawUrl string, params map[string]string, result any, retry int, logger *slog.Logger) error {
	reqUrl := rawUrl
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		reqUrl += "?" + q.Encode()
	}

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return retryable(doGet(ctx, reqUrl, result))
	}, retryPolicy(ctx, retry), func(err error, _ time.Duration) {
		logger.Warn("GET request failed, retrying...", "url", reqUrl, "attempt", attempt, "err", err)
	})
	if err != nil {
		return fmt.Errorf("GET request failed after %d attempts: %w", attempt, err)
	}
	return nil
}

func PostUrlResponse(ctx context.Context, url string, headers map[string]string, body any, result any, logger *slog.Logger) error {
	return PostUrlResponseWithRetry(ctx, url, headers, body, result, 1, logger)
}

func PostUrlResponseWithRetry(ctx context.Context, url string, headers map[string]string, body any, result any, retry int, logger *slog.Logger) error {
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return retryable(doPost(ctx, url, headers, body, result))
	}, retryPolicy(ctx, retry), func(err error, _ time.Duration) {
		logger.Warn("POST request failed, retrying...", "url", url, "attempt", attempt, "err", err)
	})
	if err != nil {
		return fmt.Errorf("POST request failed after %d attempts: %w", attempt, err)
	}
	return nil
}

func doGet(ctx context.Context, url string, result any) error {
	return do(ctx, http.MethodGet, url, nil, nil, result)
}

func doPost(ctx context.Context, url string, headers map[string]string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s body failed: %w", url, err)
	}
	return do(ctx, http.MethodPost, url, headers, payload, result)
}

// do sends one request and decodes a 200 JSON response into result. Any other status
// is an *HTTPStatusError carrying the response body.
func do(ctx context.Context, method, url string, headers map[string]string, payload []byte, result any) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create %s request failed: %w", method, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response failed: %w", method, err)
	}
	return nil
}
