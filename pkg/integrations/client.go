package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/repertoire/pkg/cache"
	"github.com/matzehuels/repertoire/pkg/httputil"
	"github.com/matzehuels/repertoire/pkg/observability"
)

// Client provides shared HTTP functionality for remote API clients.
// It handles caching, rate limiting, retry logic, and common request headers.
//
// All methods are safe for concurrent use.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	prefix  string
	ttl     time.Duration
	headers map[string]string
	limiter *rate.Limiter
}

// NewClient creates a Client with the given cache backend and default headers.
// Cache keys are namespaced by prefix (e.g. "lichess:") and stored for ttl.
// A nil cache disables caching. Pass nil for headers if no default headers
// are needed. Requests are not rate limited until [Client.SetRateLimit] is called.
func NewClient(c cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   c,
		keyer:   cache.NewDefaultKeyer(),
		prefix:  prefix,
		ttl:     ttl,
		headers: headers,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

// SetRateLimit caps outgoing requests to perSecond with the given burst.
// A non-positive perSecond removes the limit.
func (c *Client) SetRateLimit(perSecond float64, burst int) {
	if perSecond <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// SetKeyer replaces the keyer used to derive cache keys.
func (c *Client) SetKeyer(k cache.Keyer) {
	if k != nil {
		c.keyer = k
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
// Cache failures never fail the call; they only cost a refetch.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	hooks := observability.Cache()
	keyType := strings.TrimSuffix(c.prefix, ":")
	fullKey := c.keyer.HTTPKey(c.prefix, key)

	if !refresh {
		if data, ok, err := c.cache.Get(ctx, fullKey); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, keyType)
				return nil
			}
		}
		hooks.OnCacheMiss(ctx, keyType)
	}

	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := c.cache.Set(ctx, fullKey, data, c.ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers. Retries are left to [Client.Cached].
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		var re *httputil.RetryableError
		if errors.As(err, &re) {
			re.After = parseRetryAfter(resp.Header)
		}
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{Err: ErrRateLimited}
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
