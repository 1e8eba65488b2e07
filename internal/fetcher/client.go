package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ilansync/internal/common"
	"github.com/ternarybob/ilansync/internal/httpclient"
)

// Client is the page fetcher shared by every source. It issues requests with
// the configured browser identity, applies per-host rate limiting and retries
// transient failures with backoff. Parsing never happens here.
type Client struct {
	http        *http.Client
	retry       *RetryPolicy
	rateLimiter *RateLimiter
	logger      arbor.ILogger
}

// NewClient creates a fetcher from the shared fetcher configuration
func NewClient(config common.FetcherConfig, logger arbor.ILogger) *Client {
	return &Client{
		http:        httpclient.NewScrapeClient(config),
		retry:       NewRetryPolicy(config.MaxRetries),
		rateLimiter: NewRateLimiter(config.RequestDelay),
		logger:      logger,
	}
}

// GetDocument fetches a URL and parses the response body as an HTML document
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document from %s: %w", url, err)
	}
	return doc, nil
}

// GetJSON fetches a URL and decodes the response body into out
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode JSON from %s: %w", url, err)
	}
	return nil
}

// PostJSON sends a JSON payload and decodes the JSON response into out. The
// property source's search backend is POST-driven.
func (c *Client) PostJSON(ctx context.Context, url string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request payload: %w", err)
	}

	var result []byte
	err = c.retry.Execute(ctx, c.logger, func() error {
		if err := c.rateLimiter.Wait(ctx, url); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
		if err != nil {
			return fmt.Errorf("failed to build request for %s: %w", url, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return &NetworkError{URL: url, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			return &HTTPError{URL: url, Status: resp.StatusCode}
		}

		result, err = io.ReadAll(resp.Body)
		if err != nil {
			return &NetworkError{URL: url, Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("failed to decode JSON from %s: %w", url, err)
	}
	return nil
}

// get fetches a URL with rate limiting and retry, returning the response body
func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	var body []byte

	err := c.retry.Execute(ctx, c.logger, func() error {
		if err := c.rateLimiter.Wait(ctx, url); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to build request for %s: %w", url, err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return &NetworkError{URL: url, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			return &HTTPError{URL: url, Status: resp.StatusCode}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return &NetworkError{URL: url, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return io.NopCloser(bytes.NewReader(body)), nil
}
