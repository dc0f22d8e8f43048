// Package fetch downloads remote resources with a bounded timeout and
// retries transient failures.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Defaults used by New: per-request timeout, retry count for transient
// failures, and the body size cap.
const (
	DefaultTimeout  = 15 * time.Second
	DefaultRetries  = 3
	DefaultMaxBytes = 32 << 20
	userAgent       = "sadb-tools (+https://github.com/stillhq/sadb-tools)"
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// ErrTooLarge is returned when a body exceeds the configured size limit.
var ErrTooLarge = errors.New("response body exceeds size limit")

// Fetcher performs GET requests. It is safe for concurrent use.
type Fetcher struct {
	client          *http.Client
	retries         uint64
	initialInterval time.Duration
	maxBytes        int64
	limiter         *rate.Limiter
	userAgent       string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds each individual request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// WithClient replaces the underlying HTTP client. The client's own timeout is kept.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithRetries sets how many times a transient failure is retried. Zero
// means a single attempt.
func WithRetries(n int) Option {
	return func(f *Fetcher) {
		if n < 0 {
			n = 0
		}
		f.retries = uint64(n)
	}
}

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(d time.Duration) Option {
	return func(f *Fetcher) { f.initialInterval = d }
}

// WithMaxBytes caps the size of a downloaded body. Zero disables the cap.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// WithRateLimit spaces out requests to at most perSecond, with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(f *Fetcher) {
		if perSecond <= 0 {
			f.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// New returns a Fetcher with a 15 second timeout and three retries.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:          &http.Client{Timeout: DefaultTimeout},
		retries:         DefaultRetries,
		initialInterval: 500 * time.Millisecond,
		maxBytes:        DefaultMaxBytes,
		userAgent:       userAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get downloads url fully into memory.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := f.do(ctx, url, func(r io.Reader) error {
		b, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Download streams url into w and returns the number of bytes written. A
// failed attempt that already wrote to w is not retried.
func (f *Fetcher) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	var n int64
	err := f.do(ctx, url, func(r io.Reader) error {
		written, err := io.Copy(w, r)
		n += written
		if err != nil && written > 0 {
			return backoff.Permanent(err)
		}
		return err
	})
	return n, err
}

func (f *Fetcher) do(ctx context.Context, url string, consume func(io.Reader) error) error {
	operation := func() error {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("building request for %s: %w", url, err))
		}
		req.Header.Set("User-Agent", f.userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return fmt.Errorf("GET %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			serr := &StatusError{URL: url, StatusCode: resp.StatusCode}
			if retryable(resp.StatusCode) {
				return serr
			}
			return backoff.Permanent(serr)
		}

		var r io.Reader = resp.Body
		if f.maxBytes > 0 {
			if resp.ContentLength > f.maxBytes {
				return backoff.Permanent(fmt.Errorf("GET %s: %w", url, ErrTooLarge))
			}
			r = &limitedReader{r: resp.Body, remaining: f.maxBytes}
		}
		if err := consume(r); err != nil {
			if errors.Is(err, ErrTooLarge) {
				return backoff.Permanent(fmt.Errorf("GET %s: %w", url, err))
			}
			return fmt.Errorf("reading %s: %w", url, err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.initialInterval
	bo.MaxElapsedTime = 2 * time.Minute
	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, f.retries), ctx))
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// limitedReader fails with ErrTooLarge instead of silently truncating.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		var probe [1]byte
		n, err := l.r.Read(probe[:])
		if n > 0 {
			return 0, ErrTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}
