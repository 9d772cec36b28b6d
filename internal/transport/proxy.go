package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpproxy"
)

// ProxyFunc selects the proxy for an outbound request, as http.Transport
// expects it.
type ProxyFunc func(*http.Request) (*url.URL, error)

// ProxyOptions describes the proxy the application routes traffic through.
type ProxyOptions struct {
	URL            string `yaml:"url" json:"url"`
	UseEnvironment bool   `yaml:"use_environment" json:"use_environment"`
}

// NewProxyFunc returns a fixed proxy for an explicit URL, the
// HTTP_PROXY/HTTPS_PROXY/NO_PROXY selection when UseEnvironment is set, or
// nil for direct connections.
func NewProxyFunc(opts ProxyOptions) (ProxyFunc, error) {
	raw := strings.TrimSpace(opts.URL)
	if raw != "" {
		u, err := ParseProxyURL(raw)
		if err != nil {
			return nil, err
		}
		return http.ProxyURL(u), nil
	}

	if opts.UseEnvironment {
		pf := httpproxy.FromEnvironment().ProxyFunc()
		return func(r *http.Request) (*url.URL, error) { return pf(r.URL) }, nil
	}

	return nil, nil
}

// ParseProxyURL accepts host:port shorthand and http, https, socks5 and
// socks5h schemes.
func ParseProxyURL(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy url %q has no host", raw)
	}
	return u, nil
}
