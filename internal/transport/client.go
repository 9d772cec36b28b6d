package transport

import (
	"net"
	"net/http"
	"time"
)

// ClientOptions configures NewHTTPClient. A zero Timeout leaves the client
// without an overall deadline; callers bound requests with a context.
type ClientOptions struct {
	Proxy   ProxyFunc
	TLS     TLSOptions
	Timeout time.Duration
}

func NewHTTPClient(opts ClientOptions) *http.Client {
	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 15 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 opts.Proxy,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       BuildTLSConfig(opts.TLS),
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		MaxIdleConns:          4,
		IdleConnTimeout:       30 * time.Second,
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}
}
