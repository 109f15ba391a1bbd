package fetch

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sitegist/sitegist/internal/config"
)

// TestNewHTTPClient tests the base HTTP client construction.
func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	t.Run("sets timeout and cookie jar", func(t *testing.T) {
		t.Parallel()

		client := NewHTTPClient(15 * time.Second)
		if client.Timeout != 15*time.Second {
			t.Errorf("expected timeout 15s, got %v", client.Timeout)
		}
		if client.Jar == nil {
			t.Error("expected cookie jar to be set")
		}
	})

	t.Run("stops following redirects after the cap", func(t *testing.T) {
		t.Parallel()

		// Server that redirects to itself forever
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, server.URL+"/loop", http.StatusFound)
		}))
		defer server.Close()

		client := NewHTTPClient(5 * time.Second)
		resp, err := client.Get(server.URL)
		if err != nil {
			t.Fatalf("expected last response instead of error, got %v", err)
		}
		defer resp.Body.Close()

		// With http.ErrUseLastResponse the redirect response itself comes back
		if resp.StatusCode != http.StatusFound {
			t.Errorf("expected status 302 from redirect loop, got %d", resp.StatusCode)
		}
	})
}

// TestNewHTTPClientWithProfile tests site profile header injection.
func TestNewHTTPClientWithProfile(t *testing.T) {
	t.Parallel()

	t.Run("injects cookie, headers, and user agent", func(t *testing.T) {
		t.Parallel()

		var gotCookie, gotCustom, gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCookie = r.Header.Get("Cookie")
			gotCustom = r.Header.Get("X-Custom")
			gotUA = r.Header.Get("User-Agent")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		profile := config.SiteProfile{
			Cookie:    "session=abc123",
			Headers:   map[string]string{"X-Custom": "value"},
			UserAgent: "custom-agent/2.0",
		}
		client := NewHTTPClientWithProfile(5*time.Second, profile)

		resp, err := client.Get(server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		if gotCookie != "session=abc123" {
			t.Errorf("expected injected cookie, got %q", gotCookie)
		}
		if gotCustom != "value" {
			t.Errorf("expected injected header, got %q", gotCustom)
		}
		if gotUA != "custom-agent/2.0" {
			t.Errorf("expected profile user agent, got %q", gotUA)
		}
	})

	t.Run("appends cookie to existing header", func(t *testing.T) {
		t.Parallel()

		var gotCookie string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCookie = r.Header.Get("Cookie")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewHTTPClientWithProfile(5*time.Second, config.SiteProfile{Cookie: "extra=1"})

		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		req.Header.Set("Cookie", "original=0")

		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		if gotCookie != "original=0; extra=1" {
			t.Errorf("expected appended cookie, got %q", gotCookie)
		}
	})

	t.Run("zero profile uses plain transport", func(t *testing.T) {
		t.Parallel()

		client := NewHTTPClientWithProfile(5*time.Second, config.SiteProfile{})
		if _, ok := client.Transport.(*headerInjectingTransport); ok {
			t.Error("expected no injecting transport for zero profile")
		}
	})
}
