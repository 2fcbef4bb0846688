// Package remote implements the customer/job store against the CRM HTTP API.
// It keeps no local state: every call goes to the server, and a failed call
// leaves nothing half-applied on the client.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/go-crm-nosql/internal/infrastructure/resilience"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("remote")

// maxErrorBody caps how much of an error response is read into messages.
const maxErrorBody = 4 << 10

// Client wraps HTTP calls to the CRM API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	retry      resilience.Config
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the API rooted at baseURL (including the
// version prefix, e.g. https://crm.example.com/v1). token may be empty and
// set later through Login.
func NewClient(httpClient *http.Client, baseURL, token string, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb: resilience.NewCircuitBreaker("crm-api", func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrUnavailable)
		}),
		retry:  resilience.DefaultConfig,
		logger: logger,
		token:  token,
	}
}

type authEnvelope struct {
	Bearer string       `json:"Bearer"`
	User   *domain.User `json:"user"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// Login exchanges credentials for a bearer token used on later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.User, error) {
	var env authEnvelope
	err := c.call(ctx, "Login", http.MethodPost, "/auth/login", domain.LoginRequest{Email: email, Password: password}, &env)
	if err != nil {
		return nil, err
	}
	if env.Bearer == "" {
		return nil, fmt.Errorf("login response carried no token: %w", domain.ErrUnauthorized)
	}
	c.mu.Lock()
	c.token = env.Bearer
	c.mu.Unlock()
	return env.User, nil
}

// Register creates the owner account. It does not log in.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	var env authEnvelope
	if err := c.call(ctx, "Register", http.MethodPost, "/auth/register", req, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// call runs one API operation inside a span and the circuit breaker. Reads
// are retried on transient failures; writes are sent once.
func (c *Client) call(ctx context.Context, op, method, path string, in, out interface{}) error {
	ctx, span := tracer.Start(ctx, "Remote."+op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	retryable := func(err error) bool {
		return method == http.MethodGet && errors.Is(err, domain.ErrUnavailable)
	}
	err := resilience.RetryWithBackoff(ctx, c.retry, retryable, func() error {
		_, err := c.cb.Execute(func() (interface{}, error) {
			return nil, c.do(ctx, method, path, in, out)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s %s: circuit open: %w", method, path, domain.ErrUnavailable)
		}
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// do executes an authenticated request and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Error("remote: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %v: %w", method, path, err, domain.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("remote: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return statusError(resp.StatusCode, raw)
	}

	c.logger.Debug("remote: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %v: %w", method, path, err, domain.ErrUnavailable)
	}
	return nil
}

// statusError maps an API error response onto the domain sentinels.
func statusError(status int, raw []byte) error {
	msg := strings.TrimSpace(string(raw))
	var env errorEnvelope
	if json.Unmarshal(raw, &env) == nil && env.Error != "" {
		msg = env.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	var kind error
	switch {
	case status == http.StatusNotFound:
		kind = domain.ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		kind = domain.ErrValidation
	case status == http.StatusConflict:
		kind = domain.ErrConflict
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = domain.ErrUnauthorized
	default:
		kind = domain.ErrUnavailable
	}
	return fmt.Errorf("api %d: %s: %w", status, msg, kind)
}
