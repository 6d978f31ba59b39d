// Package httputil provides retry helpers for remote API clients.
//
// [Retry] wraps a request with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses, honoring Retry-After
//
// Only errors wrapped in [RetryableError] are retried; anything else (a 404,
// a decode error) is returned on the first attempt.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// Response caching lives in [github.com/matzehuels/repertoire/pkg/cache].
package httputil
