package downloader

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func mustRule(t *testing.T, scope ProxyScope, raw string) ProxyRule {
	t.Helper()

	rule, err := NewProxyRule(scope, raw)
	if err != nil {
		t.Fatalf("NewProxyRule(%s, %s) failed: %v", scope, raw, err)
	}

	return rule
}

func TestProxyFunc_RuleOrder(t *testing.T) {
	rules := []ProxyRule{
		mustRule(t, ProxyHTTPS, "http://secure-proxy:3128"),
		mustRule(t, ProxyAll, "socks5://any-proxy:1080"),
	}

	proxy := proxyFunc(rules, false)

	tests := []struct {
		name     string
		target   string
		expected string
	}{
		{name: "https uses scoped rule", target: "https://example.com/a", expected: "http://secure-proxy:3128"},
		{name: "http falls through to all", target: "http://example.com/a", expected: "socks5://any-proxy:1080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)

			got, err := proxy(req)
			if err != nil {
				t.Fatalf("proxy() error = %v", err)
			}

			if got == nil || got.String() != tt.expected {
				t.Errorf("proxy() = %v, want %s", got, tt.expected)
			}
		})
	}
}

func TestProxyFunc_NoRulesNoEnvironment(t *testing.T) {
	t.Setenv("HTTP_PROXY", "http://env-proxy:8080")

	req := httptest.NewRequest(http.MethodGet, "http://example.com/a", nil)

	got, err := proxyFunc(nil, false)(req)
	if err != nil {
		t.Fatalf("proxy() error = %v", err)
	}

	if got != nil {
		t.Errorf("expected no proxy when environment is disabled, got %v", got)
	}
}

func TestParseProxyScope(t *testing.T) {
	for _, input := range []string{"http", "HTTPS", " all "} {
		if _, err := ParseProxyScope(input); err != nil {
			t.Errorf("ParseProxyScope(%q) failed: %v", input, err)
		}
	}

	if _, err := ParseProxyScope("ftp"); err == nil {
		t.Error("expected error for ftp scope")
	}
}

func TestNewProxyRule_MissingHost(t *testing.T) {
	_, err := NewProxyRule(ProxyHTTP, "proxy-without-scheme")
	if err == nil {
		t.Fatal("expected error")
	}

	if kind, _ := KindOf(err); kind != KindProxyError {
		t.Errorf("expected ProxyError, got %v", kind)
	}
}

func TestNewClient_InvalidRule(t *testing.T) {
	_, err := NewClient(Config{Proxies: []ProxyRule{{Scope: ProxyHTTP}}})
	if kind, _ := KindOf(err); kind != KindProxyError {
		t.Errorf("expected ProxyError, got %v", err)
	}

	_, err = NewClient(Config{Proxies: []ProxyRule{{Scope: "gopher", URL: &url.URL{Scheme: "http", Host: "p:1"}}}})
	if kind, _ := KindOf(err); kind != KindProxyError {
		t.Errorf("expected ProxyError for bad scope, got %v", err)
	}
}

func TestNewClient_DefaultHeadersAndTimeout(t *testing.T) {
	var got http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer server.Close()

	headers := http.Header{}
	headers.Add("Referer", "https://example.com/")
	headers.Add("X-Multi", "a")
	headers.Add("X-Multi", "b")

	client, err := NewClient(Config{Headers: headers, Timeout: 5 * time.Second, DisableDefaultProxy: true})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if client.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", client.Timeout)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	req.Header.Set("Referer", "https://override.example/")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got.Get("Referer") != "https://override.example/" {
		t.Errorf("expected request header to win, got %s", got.Get("Referer"))
	}

	if values := got.Values("X-Multi"); len(values) != 2 {
		t.Errorf("expected both default values, got %v", values)
	}
}
