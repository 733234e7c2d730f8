// Package backend submits launch requests to the orchestration backend's
// administrative API and classifies the outcome. Each call is exactly one
// attempt: retry policy, if wanted, belongs to the event-routing layer above.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"taskgate/internal/launch"
)

// runTaskPath is the backend's run-task endpoint.
const runTaskPath = "/v1/tasks/run"

// DefaultTimeout bounds a submission when the caller's context carries no
// tighter deadline.
const DefaultTimeout = 30 * time.Second

// Runner is the dispatch client seam. The HTTP client below is the real
// implementation; tests substitute their own.
type Runner interface {
	Submit(ctx context.Context, req launch.Request) (*RunResponse, error)
}

// RunResponse is the backend's acknowledgment that a task was accepted for
// execution. Acceptance only: whether the task later succeeds is invisible
// to the dispatcher.
type RunResponse struct {
	TaskID string `json:"taskId"`
	Status string `json:"status"`

	// Raw preserves the backend's opaque payload for the outcome log.
	Raw json.RawMessage `json:"-"`
}

// apiError is the backend's structured rejection body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Config holds the client's connection parameters.
type Config struct {
	Endpoint  string
	AuthToken string
	Timeout   time.Duration
}

// Client submits launch requests over HTTP.
type Client struct {
	http *resty.Client
}

// NewClient builds the administrative API client. Retries stay disabled:
// one invocation is one attempt.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	rc := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetAuthToken(cfg.AuthToken).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{http: rc}
}

// Submit sends one run-task request and blocks until the backend accepts it,
// rejects it, or the context/timeout budget expires. All failures come back
// as *Error with a classification.
func (c *Client) Submit(ctx context.Context, req launch.Request) (*RunResponse, error) {
	var result RunResponse
	var backendErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&backendErr).
		Post(runTaskPath)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.IsError() {
		return nil, classifyRejection(resp.StatusCode(), backendErr)
	}

	result.Raw = json.RawMessage(resp.Body())
	return &result, nil
}

// classifyTransportError maps request-level failures (no HTTP status) to a
// dispatch failure. Deadline expiry is a timeout; everything else means the
// backend was unreachable.
func classifyTransportError(err error) *Error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &Error{Classification: ClassTimeout, Message: err.Error()}
	}
	return &Error{Classification: ClassUnreachable, Message: err.Error()}
}

// classifyRejection maps an HTTP error response to a dispatch failure. The
// backend's own classification code wins when present; otherwise the status
// code decides.
func classifyRejection(status int, body apiError) *Error {
	e := &Error{
		Classification: body.Code,
		Message:        body.Message,
		StatusCode:     status,
	}

	if e.Classification == "" {
		switch {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			e.Classification = ClassAuthorizationDenied
		case status == http.StatusNotFound:
			e.Classification = ClassNotFound
		case status >= 400 && status < 500:
			e.Classification = ClassInvalidRequest
		default:
			e.Classification = ClassBackendError
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
