package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"

	"github.com/ppiankov/arrests/internal/cache"
	"github.com/ppiankov/arrests/internal/model"
	"github.com/ppiankov/arrests/internal/util"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

// ErrDisallowed is returned when robots.txt forbids fetching the report
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Fetcher downloads a report into a temporary file
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	tempDir    string
	cache      cache.Cache
	robots     *util.RobotsChecker
}

// NewFetcher creates a Fetcher from the HTTP settings. c may be nil to
// disable caching.
func NewFetcher(cfg model.HTTPConfig, c cache.Cache) *Fetcher {
	transport := util.NewTransport(cfg.HTTPProxy, cfg.HTTPSProxy)

	// agency sites sometimes hand out a session cookie on the first redirect
	var jar http.CookieJar
	if j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err != nil {
		log.Warn().Err(err).Msg("cookie jar unavailable; fetching without cookies")
	} else {
		jar = j
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			Jar:       jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		tempDir:   cfg.TempDir,
		cache:     c,
	}

	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(cfg.UserAgent, transport, cfg.Timeout)
	}

	return f
}

// Document is a fetched report backed by a temporary file positioned at the
// start of its content
type Document struct {
	File     *os.File
	Size     int64
	URL      string
	FinalURL string
	Meta     model.FetchMeta
}

// ReadAt reads from the underlying file
func (d *Document) ReadAt(p []byte, off int64) (int, error) {
	return d.File.ReadAt(p, off)
}

// WithDocument fetches rawURL into a temporary file and calls fn with it.
// The file is closed and removed when WithDocument returns, whatever the
// outcome.
func (f *Fetcher) WithDocument(ctx context.Context, rawURL string, fn func(*Document) error) (err error) {
	body, meta, finalURL, err := f.get(ctx, rawURL)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.tempDir, "arrests-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		closeErr := tmp.Close()
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warn().Err(rmErr).Str("path", tmp.Name()).Msg("failed to remove temp file")
		}
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close temp file: %w", closeErr)
		}
	}()

	if _, err := tmp.Write(body); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind temp file: %w", err)
	}

	log.Debug().Str("url", rawURL).Int("bytes", len(body)).Str("path", tmp.Name()).Msg("report fetched")

	return fn(&Document{
		File:     tmp,
		Size:     int64(len(body)),
		URL:      rawURL,
		FinalURL: finalURL,
		Meta:     meta,
	})
}

// get returns the report body, from the cache when possible
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, model.FetchMeta, string, error) {
	cacheable := f.cache != nil && isHTTPURL(rawURL)
	if cacheable {
		if body, ok := f.cache.Get(cache.Key(rawURL)); ok {
			log.Debug().Str("url", rawURL).Msg("report served from cache")
			return body, model.FetchMeta{StatusCode: http.StatusOK, FromCache: true}, rawURL, nil
		}
	}

	if f.robots != nil {
		allowed, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, model.FetchMeta{}, "", fmt.Errorf("robots: %w", err)
		}
		if !allowed {
			return nil, model.FetchMeta{}, "", fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}

	body, meta, finalURL, err := f.download(ctx, rawURL)
	if err != nil {
		return nil, meta, "", err
	}

	if cacheable {
		if err := f.cache.Set(cache.Key(rawURL), body, 0); err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("failed to cache report")
		}
	}

	return body, meta, finalURL, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, model.FetchMeta, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, model.FetchMeta{}, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/pdf,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, model.FetchMeta{}, "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	meta := model.FetchMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
		Headers:      make(map[string]string),
	}

	for _, key := range []string{"Content-Length", "Server", "Cache-Control"} {
		if val := resp.Header.Get(key); val != "" {
			meta.Headers[key] = val
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, meta, "", fmt.Errorf("fetch: unexpected status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, meta, "", fmt.Errorf("read body: %w", err)
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, meta, "", fmt.Errorf("read body: report exceeds %d bytes", f.maxBytes)
	}

	// the file transport answers without a request
	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return body, meta, finalURL, nil
}

func isHTTPURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
