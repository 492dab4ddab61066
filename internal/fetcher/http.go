package fetcher

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/internal/resilience"
)

// HTTPSource fetches one letter per http(s) URL. Requests are rate limited
// per host and retried on transient failures; non-text responses are
// rejected since the analyzer reads plain text only.
type HTTPSource struct {
	client    *http.Client
	userAgent string
	retry     resilience.RetryConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
	burst    int
}

// NewHTTPSource creates an http(s) source from opts.
func NewHTTPSource(opts Options) *HTTPSource {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.PerSecond == 0 {
		opts.PerSecond = 5
	}
	if opts.Burst == 0 {
		opts.Burst = 5
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "dispute-cli/1.0"
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = opts.MaxRetries
	retry.OnRetry = resilience.RetryLogger("http", "fetch letter")

	return &HTTPSource{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		retry:     retry,
		limiters:  make(map[string]*rate.Limiter),
		perHost:   rate.Limit(opts.PerSecond),
		burst:     opts.Burst,
	}
}

// Resolve fetches the URL and returns a single document. The URL is the
// document ID; the last path element is its name.
func (s *HTTPSource) Resolve(ctx context.Context, rawURL string) ([]model.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, eris.Errorf("fetcher: expected http(s) scheme, got %q", u.Scheme)
	}

	raw, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) ([]byte, error) {
		return s.fetch(ctx, rawURL)
	})
	if err != nil {
		return nil, err
	}

	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = u.Host
	}
	return []model.Document{newDocument(rawURL, name, raw)}, nil
}

func (s *HTTPSource) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := s.limiterFor(rawURL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetcher: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/plain, text/*;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: get %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("fetcher: http %d from %s", resp.StatusCode, rawURL)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "text/") {
		return nil, eris.Errorf("fetcher: unsupported content type %q from %s, plain text only", ct, rawURL)
	}

	return readAllLimited(resp.Body, rawURL)
}

// limiterFor returns the limiter for the URL's host, creating it on first
// use. An unparseable URL shares the host-less limiter.
func (s *HTTPSource) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	lim, ok := s.limiters[host]
	if !ok {
		lim = rate.NewLimiter(s.perHost, s.burst)
		s.limiters[host] = lim
	}
	return lim
}
