// Package apiclient talks to the Legal analytics API and the backend user
// directory. Every call is recorded in the per-conversation API call log when
// one is configured.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	errx "github.com/legalvoice-orchestrator/server/internal/core/error"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
)

const (
	maxResponseBytes = 1 << 20 // 1MB
	maxLoggedBytes   = 4 << 10 // 4KB kept per logged response
)

// Option configures a client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	callLog    model.APICallLogRepository
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithCallLog records every request in repo under the conversation id
// carried by the request context.
func WithCallLog(repo model.APICallLogRepository) Option {
	return func(o *options) { o.callLog = repo }
}

func buildOptions(timeout time.Duration, opts []Option) *options {
	o := &options{httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// restClient is the shared GET-JSON machinery of both API clients.
type restClient struct {
	service  string
	baseURL  string
	http     *http.Client
	callLog  model.APICallLogRepository
	decorate func(*http.Request)
}

func (c *restClient) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.decorate != nil {
		c.decorate(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(ctx, req, params, 0, nil, time.Since(start))
		return nil, errx.WrapTransport(c.service, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.record(ctx, req, params, resp.StatusCode, nil, time.Since(start))
		return nil, errx.WrapTransport(c.service, fmt.Errorf("read body: %w", err))
	}
	c.record(ctx, req, params, resp.StatusCode, body, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errx.Upstream(c.service, resp.StatusCode, errorDetail(resp.StatusCode, body))
	}
	return body, nil
}

// record appends the call to the conversation log. Logging failures never
// affect the call itself.
func (c *restClient) record(ctx context.Context, req *http.Request, params map[string]string, status int, body []byte, d time.Duration) {
	logx.Debug().
		Str("service", c.service).
		Str("url", req.URL.Path).
		Int("status", status).
		Dur("duration", d).
		Msg("Upstream call")

	conversationID := model.ConversationIDFrom(ctx)
	if c.callLog == nil || conversationID == "" {
		return
	}
	call := model.APICall{
		Method:   req.Method,
		URL:      req.URL.String(),
		Params:   params,
		Status:   status,
		Response: loggableBody(body),
		Duration: d,
		At:       time.Now().UTC(),
	}
	// The turn may already be cancelled; the log entry is still wanted.
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := c.callLog.Append(logCtx, conversationID, call); err != nil {
		logx.Warn().Err(err).
			Str("conversation_id", conversationID).
			Str("service", c.service).
			Msg("Failed to record API call")
	}
}

// loggableBody keeps small JSON bodies verbatim and stores anything else as a
// truncated JSON string.
func loggableBody(body []byte) json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if len(body) <= maxLoggedBytes && json.Valid(body) {
		return json.RawMessage(body)
	}
	s := string(body)
	if len(s) > maxLoggedBytes {
		s = s[:maxLoggedBytes] + "...(truncated)"
	}
	b, err := json.Marshal(strings.ToValidUTF8(s, ""))
	if err != nil {
		return nil
	}
	return b
}

func errorDetail(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return http.StatusText(status)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var ue *errx.UpstreamError
	return errors.As(err, &ue) && ue.Status == http.StatusNotFound
}
