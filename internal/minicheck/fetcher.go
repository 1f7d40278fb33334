package minicheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lucera/minicheck/internal/platform/errs"
)

const userAgent = "Mozilla/5.0 (compatible; LuceraMiniCheck/1.0; +https://ai.lucera.site)"

var (
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrUpstreamStatus   = errors.New("unexpected upstream status")
	ErrNotHTML          = errors.New("response is not HTML")
	ErrPageTooLarge     = errors.New("page too large")
)

// FetchConfig bounds a single fetch, redirects included.
type FetchConfig struct {
	// Timeout covers the whole redirect chain, not each hop.
	Timeout      time.Duration
	MaxRedirects int

	// MaxChars limits the decoded page length in characters (code points).
	MaxChars int
}

// DefaultFetchConfig returns the limits a mini-check runs with.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Timeout:      12 * time.Second,
		MaxRedirects: 4,
		MaxChars:     1_500_000,
	}
}

// Page is a successfully fetched HTML document.
type Page struct {
	FinalURL  string
	HTML      string
	Redirects int
	Elapsed   time.Duration
}

// urlGuard validates every URL before it is requested.
type urlGuard interface {
	Check(ctx context.Context, raw string) (*url.URL, error)
}

// Fetcher retrieves a single HTML page, following redirects by hand so that
// each target passes the guard before it is requested.
type Fetcher struct {
	client *http.Client
	guard  urlGuard
	cfg    FetchConfig
}

// NewFetcher returns a Fetcher whose connections are restricted to public
// addresses.
func NewFetcher(guard urlGuard, cfg FetchConfig) *Fetcher {
	return newFetcher(guard, cfg, &http.Transport{
		DialContext:         publicOnlyDialer().DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	})
}

func newFetcher(guard urlGuard, cfg FetchConfig, transport http.RoundTripper) *Fetcher {
	return &Fetcher{
		guard: guard,
		cfg:   cfg,
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Fetch retrieves target, which must already have passed the guard.
func (f *Fetcher) Fetch(ctx context.Context, target *url.URL) (*Page, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	current := target
	redirects := 0
	for {
		resp, err := f.get(ctx, current)
		if err != nil {
			return nil, requestError(ctx, err)
		}

		location := resp.Header.Get("Location")
		if !isRedirect(resp.StatusCode) || location == "" {
			page, err := f.readPage(ctx, resp)
			if err != nil {
				return nil, err
			}
			page.FinalURL = current.String()
			page.Redirects = redirects
			page.Elapsed = time.Since(start)
			return page, nil
		}

		discard(resp.Body)

		redirects++
		if redirects > f.cfg.MaxRedirects {
			return nil, errs.New(errs.Unreachable, "Too many redirects.",
				fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, f.cfg.MaxRedirects))
		}

		next, err := current.Parse(location)
		if err != nil {
			return nil, errs.New(errs.Unreachable, "The page redirected to an invalid URL.", ErrInvalidURL)
		}

		current, err = f.guard.Check(ctx, next.String())
		if err != nil {
			return nil, err
		}
	}
}

func (f *Fetcher) get(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	return f.client.Do(req)
}

func (f *Fetcher) readPage(ctx context.Context, resp *http.Response) (*Page, error) {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errs.AppError{
			Kind:           errs.Unreachable,
			UpstreamStatus: resp.StatusCode,
			Message:        fmt.Sprintf("Failed to load the page (HTTP %d).", resp.StatusCode),
			Cause:          fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode),
		}
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return nil, errs.New(errs.Unreachable, "The URL does not return an HTML page.", ErrNotHTML)
	}

	// A character is at most utf8.UTFMax bytes, so a body longer than
	// MaxChars*UTFMax bytes is over the limit whatever it contains.
	maxBytes := int64(f.cfg.MaxChars) * utf8.UTFMax
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, requestError(ctx, err)
	}
	if int64(len(body)) > maxBytes || utf8.RuneCount(body) > f.cfg.MaxChars {
		return nil, errs.New(errs.Unreachable, "The page is too large for a mini-check.", ErrPageTooLarge)
	}

	return &Page{HTML: string(body)}, nil
}

func requestError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return errs.New(errs.Timeout, "The page took too long to respond.", err)
	case errors.Is(err, ErrBlockedAddress):
		return errs.New(errs.Blocked, "URL not allowed (private IP).", err)
	default:
		return errs.New(errs.Unreachable, "The page could not be reached.", err)
	}
}

func isRedirect(status int) bool {
	return status >= 300 && status <= 399
}

// discard drains a bounded amount of an unused body so the connection can be
// reused, then closes it.
func discard(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
