package testutil

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// MockTCPServer is a raw TCP server for testing transport failures.
type MockTCPServer struct {
	listener net.Listener
	handler  func(net.Conn)
	wg       sync.WaitGroup
	closed   bool
	mu       sync.Mutex
}

// NewMockTCPServer creates a TCP server that calls handler for each connection.
// If handler is nil, connections are closed immediately.
func NewMockTCPServer(handler func(net.Conn)) *MockTCPServer {
	if handler == nil {
		handler = hangupHandler
	}
	return &MockTCPServer{handler: handler}
}

func hangupHandler(conn net.Conn) {
	conn.Close()
}

// Start starts the server on a random port.
func (s *MockTCPServer) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *MockTCPServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handler(conn)
		}()
	}
}

// Stop stops the server.
func (s *MockTCPServer) Stop() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	return nil
}

// Addr returns the server address.
func (s *MockTCPServer) Addr() string {
	return s.listener.Addr().String()
}

// ClosedAddr returns a loopback address nothing listens on.
func ClosedAddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	addr := l.Addr().String()
	return addr, l.Close()
}

// SessionProxy behaves like a forward proxy that answers every request
// itself, recording the absolute URLs it was asked for.
type SessionProxy struct {
	*httptest.Server
	reply func(r *http.Request) (int, string)

	mu       sync.Mutex
	requests []string
}

// NewSessionProxy starts a proxy that replies with body and status 200.
func NewSessionProxy(body string) *SessionProxy {
	return NewSessionProxyFunc(func(*http.Request) (int, string) { return http.StatusOK, body })
}

func NewSessionProxyFunc(reply func(r *http.Request) (int, string)) *SessionProxy {
	p := &SessionProxy{reply: reply}
	p.Server = httptest.NewServer(http.HandlerFunc(p.serve))
	return p
}

func (p *SessionProxy) serve(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.requests = append(p.requests, r.URL.String())
	p.mu.Unlock()

	status, body := p.reply(r)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// ProxyURL is the proxy address to configure on a client.
func (p *SessionProxy) ProxyURL() *url.URL {
	u, _ := url.Parse(p.URL)
	return u
}

// Requests returns the URLs seen so far.
func (p *SessionProxy) Requests() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.requests...)
}

// NewDelayedServer starts an HTTP server that waits before handing the
// request to h. The wait ends early when the client goes away.
func NewDelayedServer(delay time.Duration, h http.Handler) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		h.ServeHTTP(w, r)
	}))
}
