// Package collyfetcher implements discovery.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/indieauth-client-discovery/internal/discovery"
	"github.com/JakeFAU/indieauth-client-discovery/internal/metrics"
)

// Defaults applied to zero-valued Config fields.
const (
	DefaultUserAgent    = "indieauth-client-discovery/1.0 (+https://github.com/JakeFAU/indieauth-client-discovery)"
	DefaultTimeout      = 100 * time.Second
	DefaultMaxRedirects = 3
	DefaultMaxBodyBytes = 1048576

	agentPurpose = "IndieAuth Client Information Discovery"
	acceptHeader = "application/json, text/html;q=0.9, */*;q=0.1"
)

// Config controls collector behavior.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
	MaxBodyBytes int
	// RejectPrivateAddresses refuses connections to loopback, private and link-local
	// addresses once the host has been resolved.
	RejectPrivateAddresses bool
	// Limiter, when set, is waited on before every request.
	Limiter Limiter
}

// Limiter paces requests per target host.
type Limiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Fetcher implements discovery.Fetcher using a fresh Colly collector per request.
// Collectors share one pooled transport, so concurrent fetches never share mutable state.
type Fetcher struct {
	cfg       Config
	transport http.RoundTripper
	logger    *zap.Logger
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = DefaultMaxRedirects
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		cfg:       cfg,
		transport: newHTTPTransport(cfg.RejectPrivateAddresses),
		logger:    logger,
	}
}

// Fetch executes a single bounded HTTP GET. Non-2xx answers come back as
// *discovery.FetchStatusError, everything else that prevents a response as
// *discovery.FetchTransportError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (discovery.Response, error) {
	var (
		result   discovery.Response
		fetchErr error
	)
	start := time.Now()
	if f.cfg.Limiter != nil {
		if err := f.cfg.Limiter.Wait(ctx, rawURL); err != nil {
			metrics.ObserveFetch(0, 0)
			return discovery.Response{}, &discovery.FetchTransportError{URL: rawURL, Err: err}
		}
	}
	collector := f.buildCollector(ctx, &result, &fetchErr)

	if err := f.runCollector(ctx, collector, rawURL, &fetchErr); err != nil {
		metrics.ObserveFetch(0, 0)
		f.logger.Debug("Client document fetch failed",
			zap.String("url", rawURL),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return discovery.Response{}, &discovery.FetchTransportError{URL: rawURL, Err: err}
	}

	metrics.ObserveFetch(result.StatusCode, len(result.Body))
	f.logger.Debug("Client document fetched",
		zap.String("url", rawURL),
		zap.Int("status_code", result.StatusCode),
		zap.String("content_type", result.ContentType),
		zap.Int("bytes", len(result.Body)),
		zap.Duration("duration", time.Since(start)),
	)
	if result.StatusCode < 200 || result.StatusCode > 299 {
		return discovery.Response{}, &discovery.FetchStatusError{URL: rawURL, Code: result.StatusCode}
	}
	return result, nil
}

func (f *Fetcher) buildCollector(
	ctx context.Context,
	result *discovery.Response,
	fetchErr *error,
) *colly.Collector {
	collector := colly.NewCollector(
		colly.Async(false),
		colly.UserAgent(f.userAgent()),
		colly.MaxBodySize(f.cfg.MaxBodyBytes),
		colly.IgnoreRobotsTxt(),
		colly.ParseHTTPErrorResponse(),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.SetRedirectHandler(f.checkRedirect)
	collector.WithTransport(&contextTransport{base: f.transport, ctx: ctx})

	f.configureCollectorHooks(collector, result, fetchErr)
	return collector
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	result *discovery.Response,
	fetchErr *error,
) {
	hooks.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHeader)
	})

	hooks.OnResponse(func(r *colly.Response) {
		resp := discovery.Response{
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
		}
		if r.Request != nil && r.Request.URL != nil {
			resp.URL = r.Request.URL.String()
		}
		if r.Headers != nil {
			resp.ContentType = r.Headers.Get("Content-Type")
		}
		*result = resp
	})

	hooks.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if ctx.Err() != nil {
			return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
		}
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		return nil
	}
}

// checkRedirect follows at most cfg.MaxRedirects redirects.
func (f *Fetcher) checkRedirect(_ *http.Request, via []*http.Request) error {
	if len(via) > f.cfg.MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", f.cfg.MaxRedirects)
	}
	return nil
}

func (f *Fetcher) userAgent() string {
	return f.cfg.UserAgent + "; " + agentPurpose
}
