package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sitegist/sitegist/internal/model"
)

// fakeCache is an in-memory PageCache for tests.
type fakeCache struct {
	pages map[string]*model.Page
	puts  []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{pages: make(map[string]*model.Page)}
}

func (c *fakeCache) Get(_ context.Context, url string) (*model.Page, bool) {
	p, ok := c.pages[url]
	return p, ok
}

func (c *fakeCache) Put(_ context.Context, page *model.Page) error {
	c.pages[page.URL] = page
	c.puts = append(c.puts, page.URL)
	return nil
}

// TestFetcherFetch tests the core fetch path.
func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("fetches an HTML page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><head><title>Test Page</title></head><body><p>Hello</p></body></html>"))
		}))
		defer server.Close()

		f := NewFetcher(server.Client())
		page, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if page.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", page.StatusCode)
		}
		if !strings.Contains(page.Snapshot, "Test Page") {
			t.Errorf("expected snapshot to contain page content, got %q", page.Snapshot)
		}
		if len(page.Hash) != 64 {
			t.Errorf("expected sha256 hash, got %q", page.Hash)
		}
		if page.FetchedAt.IsZero() {
			t.Error("expected FetchedAt to be set")
		}
		if page.FromCache {
			t.Error("expected FromCache to be false for network fetch")
		}
		if !page.IsHTML() {
			t.Error("expected page to be recognized as HTML")
		}
	})

	t.Run("empty URL returns ErrEmptyURL", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(http.DefaultClient)
		_, err := f.Fetch(context.Background(), "   ")
		if !errors.Is(err, ErrEmptyURL) {
			t.Errorf("expected ErrEmptyURL, got %v", err)
		}
	})

	t.Run("non-http scheme returns ErrUnsupportedScheme", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(http.DefaultClient)
		_, err := f.Fetch(context.Background(), "ftp://example.com/file")
		if !errors.Is(err, ErrUnsupportedScheme) {
			t.Errorf("expected ErrUnsupportedScheme, got %v", err)
		}
	})

	t.Run("non-OK status is returned as a page, not an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer server.Close()

		f := NewFetcher(server.Client())
		page, err := f.Fetch(context.Background(), server.URL+"/missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", page.StatusCode)
		}
	})

	t.Run("truncates bodies beyond the size limit", func(t *testing.T) {
		t.Parallel()

		big := strings.Repeat("a", 100*1024)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(big))
		}))
		defer server.Close()

		f := NewFetcher(server.Client(), WithMaxBodySize(1024))
		page, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Raw) != 1024 {
			t.Errorf("expected body truncated to 1024 bytes, got %d", len(page.Raw))
		}
	})

	t.Run("decodes non-UTF-8 textual responses", func(t *testing.T) {
		t.Parallel()

		// "café" with é encoded as ISO-8859-1 byte 0xE9
		latin1 := []byte{'c', 'a', 'f', 0xE9}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write(latin1)
		}))
		defer server.Close()

		f := NewFetcher(server.Client())
		page, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(page.Snapshot, "café") {
			t.Errorf("expected UTF-8 decoded snapshot, got %q", page.Snapshot)
		}
	})

	t.Run("binary responses keep raw bytes and skip the snapshot", func(t *testing.T) {
		t.Parallel()

		payload := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(payload)
		}))
		defer server.Close()

		f := NewFetcher(server.Client())
		page, err := f.Fetch(context.Background(), server.URL+"/logo.png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Snapshot != "" {
			t.Errorf("expected empty snapshot for binary content, got %q", page.Snapshot)
		}
		if len(page.Raw) != len(payload) {
			t.Errorf("expected raw bytes preserved, got %d bytes", len(page.Raw))
		}
		if !page.IsImage() {
			t.Error("expected page to be recognized as an image")
		}
	})

	t.Run("sends the configured user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		f := NewFetcher(server.Client(), WithUserAgent("test-agent/9.9"))
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotUA != "test-agent/9.9" {
			t.Errorf("expected configured user agent, got %q", gotUA)
		}
	})
}

// TestFetcherCache tests cache interaction.
func TestFetcherCache(t *testing.T) {
	t.Parallel()

	t.Run("cache hit skips the network", func(t *testing.T) {
		t.Parallel()

		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests++
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		cached := &model.Page{
			URL:        "https://example.com/cached",
			StatusCode: http.StatusOK,
			Snapshot:   "<html>cached</html>",
			FetchedAt:  time.Now(),
		}
		c := newFakeCache()
		c.pages[cached.URL] = cached

		f := NewFetcher(server.Client(), WithCache(c))
		page, err := f.Fetch(context.Background(), cached.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !page.FromCache {
			t.Error("expected FromCache to be true")
		}
		if requests != 0 {
			t.Errorf("expected no network requests on cache hit, got %d", requests)
		}
	})

	t.Run("successful fetches are stored", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>ok</html>"))
		}))
		defer server.Close()

		c := newFakeCache()
		f := NewFetcher(server.Client(), WithCache(c))

		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(c.puts) != 1 {
			t.Errorf("expected 1 cache write, got %d", len(c.puts))
		}
	})

	t.Run("error responses are not stored", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		c := newFakeCache()
		f := NewFetcher(server.Client(), WithCache(c))

		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(c.puts) != 0 {
			t.Errorf("expected no cache writes for 500 response, got %d", len(c.puts))
		}
	})
}

// TestIsTextual tests content type classification.
func TestIsTextual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"text/plain", true},
		{"application/xhtml+xml", true},
		{"application/xml", true},
		{"application/json", true},
		{"", true}, // servers often omit the header on HTML
		{"image/png", false},
		{"image/jpeg", false},
		{"application/pdf", false},
		{"application/octet-stream", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()

			if got := isTextual(tt.contentType); got != tt.want {
				t.Errorf("isTextual(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}
