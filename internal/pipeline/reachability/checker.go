package reachability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"bytemomo/sonar/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultEndpoint echoes the session id of the proxy that forwarded the
// request.
const DefaultEndpoint = "http://www.wiiuusbhelper.com/session"

const (
	excerptRunes = 40
	maxBodyBytes = 64 << 10
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Checker sends one GET through the configured proxy and compares the echoed
// session id. It never retries.
type Checker struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
	log      *logrus.Entry
}

// NewChecker uses client as the proxy handle; its Transport decides which
// proxy carries the request. A zero timeout leaves the transport defaults.
func NewChecker(client *http.Client, endpoint string, timeout time.Duration, log *logrus.Entry) *Checker {
	if client == nil {
		client = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Checker{
		client:   client,
		endpoint: endpoint,
		timeout:  timeout,
		log:      log.WithFields(logrus.Fields{"probe": "reachability", "endpoint": endpoint}),
	}
}

// Check reports failures as data; it has no error return.
func (c *Checker) Check(ctx context.Context, session uuid.UUID) domain.Reachability {
	res := c.check(ctx, session)
	entry := c.log.WithField("result", res.Kind.String())
	if res.OK() {
		entry.Info("Proxy reachable")
	} else {
		entry.WithField("detail", res.Detail).Warn("Proxy check failed")
	}
	return res
}

func (c *Checker) check(ctx context.Context, session uuid.UUID) domain.Reachability {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return domain.ProxyUnreachable(err.Error())
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ProxyUnreachable(cause(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.ProxyUnreachable(cause(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.ProxyUnreachable(fmt.Sprintf("The remote server returned an error: %s", resp.Status))
	}

	return Classify(string(body), session)
}

// Classify decides between Reachable and SessionMismatch for a response
// body that arrived successfully.
func Classify(body string, session uuid.UUID) domain.Reachability {
	if id, err := uuid.Parse(strings.TrimSpace(body)); err == nil && id == session {
		return domain.ProxyReachable()
	}
	return domain.ProxySessionMismatch(Excerpt(body))
}

// Excerpt keeps the first 40 characters, collapses whitespace runs to a
// single space and appends "...".
func Excerpt(body string) string {
	r := []rune(body)
	if len(r) > excerptRunes {
		r = r[:excerptRunes]
	}
	return whitespaceRun.ReplaceAllString(string(r), " ") + "..."
}

// cause strips the "Get <url>:" prefix net/http adds so the report shows
// the underlying failure.
func cause(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err.Error()
	}
	return err.Error()
}
