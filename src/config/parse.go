package config

import (
	"fmt"
	"strings"
)

// ParseHeaders parses "name=value,name2=value2". Entries without "=" are
// rejected; values may contain further "=" characters.
func ParseHeaders(s string) ([]Header, error) {
	var headers []Header

	for _, part := range splitList(s) {
		name, value, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q (expected name=value)", part)
		}

		headers = append(headers, Header{
			Name:  strings.TrimSpace(name),
			Value: ExpandEnvVars(strings.TrimSpace(value)),
		})
	}

	return headers, nil
}

// ParseProxies parses "scope=url,..." where scope is http, https or all.
// A bare URL applies to all schemes.
func ParseProxies(s string) ([]ProxyEntry, error) {
	var proxies []ProxyEntry

	for _, part := range splitList(s) {
		scope, proxyURL, ok := strings.Cut(part, "=")
		if !ok {
			scope, proxyURL = "all", part
		}

		scope = strings.ToLower(strings.TrimSpace(scope))
		if !validScope(scope) {
			return nil, fmt.Errorf("invalid proxy scope %q in %q", scope, part)
		}

		proxies = append(proxies, ProxyEntry{Scope: scope, URL: strings.TrimSpace(proxyURL)})
	}

	return proxies, nil
}

func splitList(s string) []string {
	var parts []string

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}

	return parts
}
