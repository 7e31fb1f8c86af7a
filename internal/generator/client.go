package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient sends a chat completion and returns the first choice's content.
type ChatClient interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// ErrorKind classifies a failed generation call.
type ErrorKind string

const (
	KindRateLimited     ErrorKind = "rate_limited"
	KindUnavailable     ErrorKind = "unavailable"
	KindInvalidResponse ErrorKind = "invalid_response"
)

// Sentinel errors matched by errors.Is against an *Error of the same kind.
var (
	ErrRateLimited     = &Error{Kind: KindRateLimited}
	ErrUnavailable     = &Error{Kind: KindUnavailable}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
)

// Error is a classified generation failure.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := "generation " + string(e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (http %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the ErrorKind in err's chain, or "".
func KindOf(err error) ErrorKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

const maxRetryWait = 10 * time.Second

// ClientConfig configures the HTTP chat client.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	// Backoff is the wait before a retry when the server sends no Retry-After.
	Backoff    time.Duration
	HTTPClient *http.Client
}

type httpClient struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	http       *http.Client
	log        *slog.Logger
}

// NewHTTPClient returns a ChatClient for an OpenAI-compatible endpoint.
func NewHTTPClient(cfg ClientConfig, log *slog.Logger) (ChatClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing API key")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &httpClient{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		http:       hc,
		log:        log.With("service", "ChatClient"),
	}, nil
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *httpClient) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		return "", err
	}

	for attempt := 0; ; attempt++ {
		content, retryAfter, err := c.doOnce(ctx, body)
		if err == nil {
			return content, nil
		}
		if !retryable(err) || attempt >= c.maxRetries {
			return "", err
		}

		wait := c.backoff
		if retryAfter > 0 {
			wait = min(retryAfter, maxRetryWait)
		}
		c.log.WarnContext(ctx, "Chat completion retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("sleep", wait),
			slog.String("error", err.Error()),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", &Error{Kind: KindUnavailable, Err: ctx.Err()}
		case <-timer.C:
		}
	}
}

// doOnce performs one request under the per-call timeout.
func (c *httpClient) doOnce(ctx context.Context, body []byte) (string, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, &Error{Kind: KindUnavailable, Err: err}
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", 0, &Error{Kind: KindUnavailable, StatusCode: resp.StatusCode, Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", retryAfter(resp), classifyStatus(resp.StatusCode, raw)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", 0, &Error{Kind: KindInvalidResponse, StatusCode: resp.StatusCode, Err: err}
	}
	if len(out.Choices) == 0 {
		return "", 0, &Error{Kind: KindInvalidResponse, StatusCode: resp.StatusCode, Err: errors.New("no choices")}
	}
	content := out.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", 0, &Error{Kind: KindInvalidResponse, StatusCode: resp.StatusCode, Err: errors.New("empty content")}
	}
	return content, 0, nil
}

func classifyStatus(status int, raw []byte) error {
	detail := errors.New(strings.TrimSpace(string(raw)))
	switch {
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, StatusCode: status, Err: detail}
	case status == http.StatusRequestTimeout || status >= 500:
		return &Error{Kind: KindUnavailable, StatusCode: status, Err: detail}
	default:
		return &Error{Kind: KindInvalidResponse, StatusCode: status, Err: detail}
	}
}

func retryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimited, KindUnavailable:
		return true
	}
	return false
}

func retryAfter(resp *http.Response) time.Duration {
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
