package hastebin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bytemomo/sonar/internal/domain"
	"bytemomo/sonar/pkg/sonarerr"

	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "https://hastebin.com"

const maxResponseBytes = 1 << 20

type Publisher struct {
	client  *http.Client
	baseURL string
	log     *logrus.Entry
}

func New(client *http.Client, baseURL string, log *logrus.Entry) *Publisher {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Publisher{
		client:  client,
		baseURL: baseURL,
		log:     log.WithFields(logrus.Fields{"adapter": "hastebin", "base_url": baseURL}),
	}
}

type documentResponse struct {
	Key *string `json:"key"`
}

// Publish uploads text and returns its retrieval URL. A timeout <= 0 waits
// indefinitely; ctx can still cancel the upload.
func (p *Publisher) Publish(ctx context.Context, text string, timeout time.Duration) (domain.PublishResult, error) {
	const op = "hastebin.Publish"

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/documents", strings.NewReader(text))
	if err != nil {
		return domain.PublishResult{}, sonarerr.E(op, sonarerr.KindTransport, "build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return domain.PublishResult{}, p.requestError(ctx, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.PublishResult{}, p.requestError(ctx, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.log.WithField("status", resp.StatusCode).Warn("Paste service rejected report")
		return domain.PublishResult{}, sonarerr.E(op, sonarerr.KindStatus, fmt.Sprintf("unexpected status %s", resp.Status), nil)
	}

	var doc documentResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.PublishResult{}, sonarerr.E(op, sonarerr.KindParse, "decode response", err)
	}
	if doc.Key == nil || *doc.Key == "" {
		return domain.PublishResult{}, sonarerr.E(op, sonarerr.KindParse, "response has no key", nil)
	}

	res := domain.PublishResult{URL: p.baseURL + "/" + *doc.Key}
	p.log.WithFields(logrus.Fields{
		"url":      res.URL,
		"bytes":    len(text),
		"duration": time.Since(start).String(),
	}).Info("Report published")
	return res, nil
}

func (p *Publisher) requestError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		p.log.WithError(err).Warn("Report upload canceled")
		return sonarerr.E(op, sonarerr.KindCanceled, "upload canceled", err)
	}
	p.log.WithError(err).Warn("Report upload failed")
	return sonarerr.E(op, sonarerr.KindTransport, "upload failed", err)
}
