package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/httpx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// Client talks to the upstream store API: the product feed plus the remote
// cart endpoints the sync adapter pulls from and pushes to.
type Client struct {
	log     *logger.Logger
	baseURL string
	http    *http.Client
}

func NewClient(log *logger.Logger, baseURL string, timeout time.Duration) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("missing store API base URL")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		log:     log.With("service", "StoreAPIClient"),
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type statusError struct {
	status int
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("store api: unexpected status %d from %s", e.status, e.url)
}

func (e *statusError) HTTPStatusCode() int { return e.status }

// cartPayload resolves the remote cart endpoint's two known response shapes
// once, at the boundary: either a bare item array or {items: [...], count}.
type cartPayload struct {
	items []domain.LineItem
}

func (p *cartPayload) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		p.items = nil
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &p.items)
	}
	var wrapped struct {
		Items []domain.LineItem `json:"items"`
		Count int               `json:"count"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	p.items = wrapped.Items
	return nil
}

// PullCart fetches the remote cart. (nil, false, nil) means the remote has
// no cart for this client. One retry on transient failure.
func (c *Client) PullCart(ctx context.Context) ([]domain.LineItem, bool, error) {
	endpoint := c.baseURL + "/api/view_cart"

	body, err := c.getWithRetry(ctx, endpoint)
	if err != nil {
		return nil, false, err
	}
	if body == nil {
		return nil, false, nil
	}

	var payload cartPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, fmt.Errorf("decode remote cart: %w", err)
	}
	if payload.items == nil {
		return nil, false, nil
	}
	return payload.items, true, nil
}

// PushCart mirrors the full serialized item array to the remote cart. The
// response body is ignored on success; a non-2xx status is an error the
// caller logs and moves on from. No automatic retry: the next mutation's
// push carries the complete snapshot anyway.
func (c *Client) PushCart(ctx context.Context, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart items: %w", err)
	}
	endpoint := c.baseURL + "/api/cart"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{status: resp.StatusCode, url: endpoint}
	}
	return nil
}

// ListProducts fetches one page of the product feed.
func (c *Client) ListProducts(ctx context.Context, page int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	endpoint := c.baseURL + "/api/products?" + url.Values{"page": []string{strconv.Itoa(page)}}.Encode()

	body, err := c.getWithRetry(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Product{}, nil
	}

	var feed struct {
		Data []domain.Product `json:"data"`
	}
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode product feed: %w", err)
	}
	if feed.Data == nil {
		feed.Data = []domain.Product{}
	}
	return feed.Data, nil
}

// getWithRetry performs a GET with a single jittered retry on transient
// failure. A 404 reads as "absent" (nil body, nil error).
func (c *Client) getWithRetry(ctx context.Context, endpoint string) ([]byte, error) {
	body, retryAfter, err := c.get(ctx, endpoint)
	if err == nil || !httpx.IsRetryableError(err) {
		return body, err
	}

	c.log.Debug("Retrying store API request", "url", endpoint, "error", err)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(httpx.JitterSleep(retryAfter)):
	}
	body, _, err = c.get(ctx, endpoint)
	return body, err
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, time.Second, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, 0, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		retryAfter := httpx.RetryAfterDuration(resp, time.Second, 10*time.Second)
		return nil, retryAfter, &statusError{status: resp.StatusCode, url: endpoint}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, time.Second, err
	}
	return body, 0, nil
}
