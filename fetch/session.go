// Package fetch builds the HTTP session used by the whole run: one client
// with a fixed browser User-Agent, a bounded retry policy with exponential
// backoff for transient failures (connection errors, 5xx, 429), and a
// per-request timeout.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/roachag/blog-export/config"
)

// Session wraps a retrying HTTP client with the default request headers.
type Session struct {
	client         *retryablehttp.Client
	userAgent      string
	acceptLanguage string
}

// retryLogger adapts logrus to the leveled logger retryablehttp expects, so
// retry attempts show up as debug fields instead of raw prints.
type retryLogger struct {
	log *logrus.Logger
}

func (l retryLogger) Error(msg string, kv ...any) { l.entry(kv).Error(msg) }
func (l retryLogger) Warn(msg string, kv ...any)  { l.entry(kv).Warn(msg) }
func (l retryLogger) Info(msg string, kv ...any)  { l.entry(kv).Debug(msg) }
func (l retryLogger) Debug(msg string, kv ...any) { l.entry(kv).Debug(msg) }

func (l retryLogger) entry(kv []any) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			fields[key] = kv[i+1]
		}
	}
	return l.log.WithFields(fields)
}

// NewSession builds the session from the run configuration.
func NewSession(cfg *config.Config, log *logrus.Logger) *Session {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = cfg.RetryWaitMin
	client.RetryWaitMax = cfg.RetryWaitMax
	client.HTTPClient.Timeout = cfg.RequestTimeout
	if log != nil {
		client.Logger = retryLogger{log: log}
	} else {
		client.Logger = nil
	}

	return &Session{
		client:         client,
		userAgent:      cfg.UserAgent,
		acceptLanguage: cfg.AcceptLanguage,
	}
}

// get issues one GET (with the client's retry policy) and returns the
// response body. Any status other than 200 is an error.
func (s *Session) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	if s.acceptLanguage != "" {
		req.Header.Set("Accept-Language", s.acceptLanguage)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status for %s: %d %s", url, resp.StatusCode, resp.Status)
	}
	return resp.Body, nil
}

// GetHTML fetches a page and returns the raw body.
func (s *Session) GetHTML(ctx context.Context, url string) (string, error) {
	body, err := s.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read body of %s: %w", url, err)
	}
	return string(data), nil
}

// GetDocument fetches a page and parses it with goquery.
func (s *Session) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := s.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}
	return doc, nil
}
