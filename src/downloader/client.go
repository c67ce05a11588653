package downloader

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ProxyScope selects which request schemes a proxy rule applies to.
type ProxyScope string

// Proxy scopes.
const (
	ProxyHTTP  ProxyScope = "http"
	ProxyHTTPS ProxyScope = "https"
	ProxyAll   ProxyScope = "all"
)

// ParseProxyScope accepts http, https or all, case-insensitively.
func ParseProxyScope(s string) (ProxyScope, error) {
	switch scope := ProxyScope(strings.ToLower(strings.TrimSpace(s))); scope {
	case ProxyHTTP, ProxyHTTPS, ProxyAll:
		return scope, nil
	default:
		return "", newError(KindProxyError, fmt.Errorf("unknown proxy scope %q", s))
	}
}

// ProxyRule routes requests of a scope through a proxy.
type ProxyRule struct {
	Scope ProxyScope
	URL   *url.URL
}

// NewProxyRule parses proxyURL. It fails with a ProxyError when the URL
// has no scheme or host.
func NewProxyRule(scope ProxyScope, proxyURL string) (ProxyRule, error) {
	if _, err := ParseProxyScope(string(scope)); err != nil {
		return ProxyRule{}, err
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return ProxyRule{}, newError(KindProxyError, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return ProxyRule{}, newError(KindProxyError, fmt.Errorf("proxy url %q needs a scheme and host", proxyURL))
	}

	return ProxyRule{Scope: scope, URL: parsed}, nil
}

func (rule ProxyRule) matches(scheme string) bool {
	return rule.Scope == ProxyAll || string(rule.Scope) == scheme
}

// NewClient builds the HTTP client shared by every worker.
func NewClient(config Config) (*http.Client, error) {
	for _, rule := range config.Proxies {
		if rule.URL == nil || rule.URL.Host == "" {
			return nil, newError(KindProxyError, fmt.Errorf("proxy rule for %q has no url", rule.Scope))
		}

		if _, err := ParseProxyScope(string(rule.Scope)); err != nil {
			return nil, err
		}
	}

	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, newError(KindClientBuild, fmt.Errorf("default transport is %T", http.DefaultTransport))
	}

	transport := base.Clone()
	transport.Proxy = proxyFunc(config.Proxies, !config.DisableDefaultProxy)

	return &http.Client{
		Transport: &headerTransport{headers: config.Headers.Clone(), next: transport},
		Timeout:   config.Timeout,
	}, nil
}

func proxyFunc(rules []ProxyRule, useEnvironment bool) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		for _, rule := range rules {
			if rule.matches(req.URL.Scheme) {
				return rule.URL, nil
			}
		}

		if useEnvironment {
			return http.ProxyFromEnvironment(req)
		}

		return nil, nil
	}
}

// headerTransport adds default headers that the request does not set.
type headerTransport struct {
	headers http.Header
	next    http.RoundTripper
}

func (transport *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(transport.headers) == 0 {
		return transport.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	for name, values := range transport.headers {
		if _, set := req.Header[name]; set {
			continue
		}

		req.Header[name] = append([]string(nil), values...)
	}

	return transport.next.RoundTrip(req)
}
