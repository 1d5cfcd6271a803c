// Package remote implements ports.SentenceStore against the translation
// backend's REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"wikitrans/internal/domain"
	"wikitrans/internal/ports"
)

const (
	DefaultSentencesPath = "/{project}/sentence"
	DefaultSentencePath  = "/sentence/{id}"
)

type Options struct {
	BaseURL       string
	SentencesPath string
	SentencePath  string
	Timeout       time.Duration
	// Consecutive transport or 5xx failures before the breaker opens.
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	Logger             *slog.Logger
}

type Client struct {
	base          string
	sentencesPath string
	sentencePath  string
	creds         ports.Credentials
	http          *resty.Client
	cb            *gobreaker.CircuitBreaker
	log           *slog.Logger
}

func New(o Options, creds ports.Credentials) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	if o.SentencesPath == "" {
		o.SentencesPath = DefaultSentencesPath
	}
	if o.SentencePath == "" {
		o.SentencePath = DefaultSentencePath
	}
	if o.BreakerMaxFailures == 0 {
		o.BreakerMaxFailures = 5
	}
	if o.BreakerOpenTimeout <= 0 {
		o.BreakerOpenTimeout = 30 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	c := &Client{
		base:          strings.TrimRight(o.BaseURL, "/"),
		sentencesPath: o.SentencesPath,
		sentencePath:  o.SentencePath,
		creds:         creds,
		http:          resty.New().SetTimeout(o.Timeout).SetHeader("Accept", "application/json"),
		log:           o.Logger,
	}
	maxFailures := o.BreakerMaxFailures
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "sentence-store",
		Timeout: o.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// countsAsHealthy keeps rejections decided by the backend (401, 4xx,
// error payloads) from tripping the breaker.
func countsAsHealthy(err error) bool {
	if err == nil || errors.Is(err, domain.ErrUnauthorized) {
		return true
	}
	var re *domain.RecordError
	if errors.As(err, &re) {
		return re.Status < 500
	}
	return false
}

func (c *Client) ListSentences(ctx context.Context, projectID string) ([]*domain.Sentence, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, domain.ErrEmptyProject
	}
	u := c.base + strings.ReplaceAll(c.sentencesPath, "{project}", url.PathEscape(projectID))
	body, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) { return r.Get(u) })
	if err != nil {
		return nil, err
	}
	var out []*domain.Sentence
	if err := json.Unmarshal(body, &out); err != nil {
		if msg := errorField(body); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, fmt.Errorf("decode sentences: %w", err)
	}
	return out, nil
}

func (c *Client) PatchTranslation(ctx context.Context, sentenceID int64, text string) error {
	u := c.base + strings.ReplaceAll(c.sentencePath, "{id}", strconv.FormatInt(sentenceID, 10))
	payload := map[string]string{"translated_sentence": text}
	_, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetHeader("Content-Type", "application/json").SetBody(payload).Patch(u)
	})
	var re *domain.RecordError
	if errors.As(err, &re) {
		re.SentenceID = sentenceID
	}
	return err
}

// do runs one authorized request through the breaker and returns the body
// of a successful response.
func (c *Client) do(ctx context.Context, send func(*resty.Request) (*resty.Response, error)) ([]byte, error) {
	token, ok := c.token()
	if !ok {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, domain.ErrNoSession)
	}
	res, err := c.cb.Execute(func() (interface{}, error) {
		rr, err := send(c.http.R().SetContext(ctx).SetAuthToken(token))
		if err != nil {
			return nil, err
		}
		return rr.Body(), classify(rr)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	if err != nil {
		return nil, err
	}
	body, _ := res.([]byte)
	return body, nil
}

func (c *Client) token() (string, bool) {
	if c.creds == nil {
		return "", false
	}
	t, ok := c.creds.Token()
	return t, ok && t != ""
}

// classify maps a response to the store's error contract: 401 is
// ErrUnauthorized, an error payload or non-2xx status is a RecordError.
func classify(rr *resty.Response) error {
	if rr.StatusCode() == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", rr.Request.Method, rr.Request.URL, domain.ErrUnauthorized)
	}
	msg := errorField(rr.Body())
	if rr.IsError() {
		if msg == "" {
			msg = rr.Status()
		}
		return &domain.RecordError{Status: rr.StatusCode(), Reason: msg}
	}
	if msg != "" {
		return &domain.RecordError{Status: rr.StatusCode(), Reason: msg}
	}
	return nil
}

// errorField extracts {"error": "..."} from a JSON object body.
func errorField(body []byte) string {
	var obj struct {
		Error json.RawMessage `json:"error"`
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}
	if err := json.Unmarshal(body, &obj); err != nil || len(obj.Error) == 0 || string(obj.Error) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(obj.Error, &s); err == nil {
		return s
	}
	return string(obj.Error)
}
