package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/arrests/internal/cache"
	"github.com/ppiankov/arrests/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTPConfig(t *testing.T) model.HTTPConfig {
	t.Helper()
	cfg := model.DefaultConfig().HTTP
	cfg.Timeout = 5 * time.Second
	cfg.UserAgent = "test-agent"
	cfg.TempDir = t.TempDir()
	return cfg
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files left behind in %s", dir)
}

func pdfServer(t *testing.T, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWithDocument_Success(t *testing.T) {
	srv := pdfServer(t, "%PDF-1.3 fake", nil)
	cfg := testHTTPConfig(t)
	fetcher := NewFetcher(cfg, nil)

	var path string
	err := fetcher.WithDocument(context.Background(), srv.URL+"/arrests.pdf", func(doc *Document) error {
		path = doc.File.Name()
		assert.FileExists(t, path)
		assert.Equal(t, int64(len("%PDF-1.3 fake")), doc.Size)
		assert.Equal(t, http.StatusOK, doc.Meta.StatusCode)
		assert.Equal(t, "application/pdf", doc.Meta.ContentType)

		// readable from the start without seeking
		body, err := io.ReadAll(doc.File)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.3 fake", string(body))

		buf := make([]byte, 4)
		_, err = doc.ReadAt(buf, 1)
		require.NoError(t, err)
		assert.Equal(t, "PDF-", string(buf))
		return nil
	})
	require.NoError(t, err)
	assert.NoFileExists(t, path)
	assertDirEmpty(t, cfg.TempDir)
}

func TestWithDocument_FileURL(t *testing.T) {
	src := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.3 local"), 0o644))
	abs, err := filepath.Abs(src)
	require.NoError(t, err)

	cfg := testHTTPConfig(t)
	fetcher := NewFetcher(cfg, nil)

	fileURL := "file://" + filepath.ToSlash(abs)
	err = fetcher.WithDocument(context.Background(), fileURL, func(doc *Document) error {
		body, err := io.ReadAll(doc.File)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.3 local", string(body))
		assert.Equal(t, fileURL, doc.URL)
		assert.Equal(t, fileURL, doc.FinalURL)
		assert.Equal(t, http.StatusOK, doc.Meta.StatusCode)
		return nil
	})
	require.NoError(t, err)
	assertDirEmpty(t, cfg.TempDir)
}

func TestWithDocument_FinalURLAfterRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/latest.pdf", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/2019-02-25.pdf", http.StatusFound)
	})
	mux.HandleFunc("/2019-02-25.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.3"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testHTTPConfig(t)
	err := NewFetcher(cfg, nil).WithDocument(context.Background(), srv.URL+"/latest.pdf", func(doc *Document) error {
		assert.Equal(t, srv.URL+"/latest.pdf", doc.URL)
		assert.Equal(t, srv.URL+"/2019-02-25.pdf", doc.FinalURL)
		return nil
	})
	require.NoError(t, err)
	assertDirEmpty(t, cfg.TempDir)
}

func TestWithDocument_CallbackErrorCleansUp(t *testing.T) {
	srv := pdfServer(t, "%PDF-1.3", nil)
	cfg := testHTTPConfig(t)
	boom := errors.New("parse failed")

	var path string
	err := NewFetcher(cfg, nil).WithDocument(context.Background(), srv.URL, func(doc *Document) error {
		path = doc.File.Name()
		return boom
	})
	assert.True(t, errors.Is(err, boom))
	assert.NoFileExists(t, path)
	assertDirEmpty(t, cfg.TempDir)
}

func TestWithDocument_PanicCleansUp(t *testing.T) {
	srv := pdfServer(t, "%PDF-1.3", nil)
	cfg := testHTTPConfig(t)

	assert.Panics(t, func() {
		_ = NewFetcher(cfg, nil).WithDocument(context.Background(), srv.URL, func(doc *Document) error {
			panic("extractor blew up")
		})
	})
	assertDirEmpty(t, cfg.TempDir)
}

func TestWithDocument_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := testHTTPConfig(t)
	called := false
	err := NewFetcher(cfg, nil).WithDocument(context.Background(), srv.URL, func(*Document) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, "fetch: unexpected status: 404 Not Found", err.Error())
	assert.False(t, called)
	assertDirEmpty(t, cfg.TempDir)
}

func TestWithDocument_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := testHTTPConfig(t)
	err := NewFetcher(cfg, nil).WithDocument(context.Background(), url, func(*Document) error {
		t.Fatal("callback must not run")
		return nil
	})
	require.Error(t, err)
	assertDirEmpty(t, cfg.TempDir)
}

func TestWithDocument_InvalidURL(t *testing.T) {
	cfg := testHTTPConfig(t)

	err := NewFetcher(cfg, nil).WithDocument(context.Background(), "://not a url", func(*Document) error {
		return nil
	})
	require.Error(t, err)
	assertDirEmpty(t, cfg.TempDir)
}

func TestWithDocument_MissingFile(t *testing.T) {
	cfg := testHTTPConfig(t)
	missing := filepath.ToSlash(filepath.Join(t.TempDir(), "nope.pdf"))

	err := NewFetcher(cfg, nil).WithDocument(context.Background(), "file://"+missing, func(*Document) error {
		return nil
	})
	require.Error(t, err)
	assertDirEmpty(t, cfg.TempDir)
}

func TestWithDocument_MaxBodyBytes(t *testing.T) {
	srv := pdfServer(t, "%PDF-1.3 0123456789", nil)
	cfg := testHTTPConfig(t)
	cfg.MaxBodyBytes = 8

	err := NewFetcher(cfg, nil).WithDocument(context.Background(), srv.URL, func(*Document) error {
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 8 bytes")
	assertDirEmpty(t, cfg.TempDir)
}

func TestWithDocument_Cache(t *testing.T) {
	var hits atomic.Int32
	srv := pdfServer(t, "%PDF-1.3 cached", &hits)
	cfg := testHTTPConfig(t)
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	fetcher := NewFetcher(cfg, c)

	for i := 0; i < 3; i++ {
		err := fetcher.WithDocument(context.Background(), srv.URL, func(doc *Document) error {
			body, err := io.ReadAll(doc.File)
			require.NoError(t, err)
			assert.Equal(t, "%PDF-1.3 cached", string(body))
			assert.Equal(t, i > 0, doc.Meta.FromCache)
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestWithDocument_RobotsDisallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /\n")
			return
		}
		_, _ = fmt.Fprint(w, "%PDF-1.3")
	}))
	defer srv.Close()

	cfg := testHTTPConfig(t)
	cfg.RespectRobots = true

	err := NewFetcher(cfg, nil).WithDocument(context.Background(), srv.URL+"/arrests.pdf", func(*Document) error {
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDisallowed))
	assertDirEmpty(t, cfg.TempDir)
}

func TestIsHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://example.com/a.pdf", true},
		{"https://example.com/a.pdf", true},
		{"file:///tmp/a.pdf", false},
		{"://bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, isHTTPURL(tt.url))
		})
	}
}
