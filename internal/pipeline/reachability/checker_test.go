package reachability

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"bytemomo/sonar/internal/domain"
	"bytemomo/sonar/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func proxiedClient(proxy *url.URL) *http.Client {
	return &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxy)}}
}

func TestCheck_Reachable(t *testing.T) {
	session := uuid.New()
	proxy := testutil.NewSessionProxy(session.String() + "\r\n")
	defer proxy.Close()

	checker := NewChecker(proxiedClient(proxy.ProxyURL()), "", 0, nil)
	res := checker.Check(context.Background(), session)

	assert.Equal(t, domain.Reachable, res.Kind)
	assert.Equal(t, "Yes", res.String())
	assert.Equal(t, []string{DefaultEndpoint}, proxy.Requests())
}

func TestCheck_DifferentSession(t *testing.T) {
	proxy := testutil.NewSessionProxy(uuid.New().String())
	defer proxy.Close()

	checker := NewChecker(proxiedClient(proxy.ProxyURL()), "", 0, nil)
	res := checker.Check(context.Background(), uuid.New())

	require.Equal(t, domain.SessionMismatch, res.Kind)
	assert.True(t, strings.HasSuffix(res.Detail, "..."))
	assert.LessOrEqual(t, len([]rune(strings.TrimSuffix(res.Detail, "..."))), 40)
}

func TestCheck_ArbitraryText(t *testing.T) {
	body := "Fiddler Echo Service\n\n\t<html>   <body> this page is much longer than forty characters"
	proxy := testutil.NewSessionProxy(body)
	defer proxy.Close()

	checker := NewChecker(proxiedClient(proxy.ProxyURL()), "", 0, nil)
	res := checker.Check(context.Background(), uuid.New())

	require.Equal(t, domain.SessionMismatch, res.Kind)
	assert.Equal(t, "Fiddler Echo Service <html> <body> t...", res.Detail)
	assert.Equal(t, "No (Invalid response: Fiddler Echo Service <html> <body> t...)", res.String())
}

func TestCheck_TransportFailure(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("Unable to connect to the remote server")
	})}

	res := NewChecker(client, "", 0, nil).Check(context.Background(), uuid.New())

	assert.Equal(t, domain.Unreachable, res.Kind)
	assert.Equal(t, "Unable to connect to the remote server", res.Detail)
	assert.Equal(t, "No (Unable to connect to the remote server)", res.String())
}

func TestCheck_ProxyRefused(t *testing.T) {
	addr, err := testutil.ClosedAddr()
	require.NoError(t, err)

	client := proxiedClient(&url.URL{Scheme: "http", Host: addr})
	res := NewChecker(client, "", 2*time.Second, nil).Check(context.Background(), uuid.New())

	assert.Equal(t, domain.Unreachable, res.Kind)
	assert.NotEmpty(t, res.Detail)
	assert.NotContains(t, res.Detail, DefaultEndpoint)
}

func TestCheck_ErrorStatus(t *testing.T) {
	session := uuid.New()
	proxy := testutil.NewSessionProxyFunc(func(*http.Request) (int, string) {
		return http.StatusBadGateway, session.String()
	})
	defer proxy.Close()

	res := NewChecker(proxiedClient(proxy.ProxyURL()), "", 0, nil).Check(context.Background(), session)

	assert.Equal(t, domain.Unreachable, res.Kind)
	assert.Contains(t, res.Detail, "502")
}

func TestCheck_Timeout(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		<-r.Context().Done()
		return nil, r.Context().Err()
	})}

	start := time.Now()
	res := NewChecker(client, "", 50*time.Millisecond, nil).Check(context.Background(), uuid.New())

	assert.Equal(t, domain.Unreachable, res.Kind)
	assert.Contains(t, res.Detail, "deadline exceeded")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCheck_CustomEndpoint(t *testing.T) {
	session := uuid.New()
	proxy := testutil.NewSessionProxy(session.String())
	defer proxy.Close()

	endpoint := "http://diagnostics.example.test/session"
	res := NewChecker(proxiedClient(proxy.ProxyURL()), endpoint, 0, nil).Check(context.Background(), session)

	assert.True(t, res.OK())
	assert.Equal(t, []string{endpoint}, proxy.Requests())
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"short", "nope", "nope..."},
		{"exact", strings.Repeat("a", 40), strings.Repeat("a", 40) + "..."},
		{"long", strings.Repeat("b", 60), strings.Repeat("b", 40) + "..."},
		{"whitespace", "a \t\n b", "a b..."},
		{"multibyte", strings.Repeat("é", 45), strings.Repeat("é", 40) + "..."},
		{"empty", "", "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excerpt(tt.body))
		})
	}
}

func TestClassify(t *testing.T) {
	session := uuid.New()

	assert.True(t, Classify("  "+session.String()+"\n", session).OK())
	assert.True(t, Classify(strings.ToUpper(session.String()), session).OK())
	assert.Equal(t, domain.SessionMismatch, Classify("not-a-guid", session).Kind)
}
