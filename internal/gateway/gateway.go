// Package gateway talks to the remote sales-tracking service and keeps the
// local fallback store in step with it. Reads degrade to the store when the
// service cannot be reached; writes land in the store before the network call.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go-sales-agent/internal/store"
)

const maxResponseBytes = 32 << 20

// Gateway is constructed once at start and shared by every handler.
type Gateway struct {
	baseURL  string
	client   *http.Client
	store    *store.Store
	deviceID string
	online   atomic.Bool
	syncMu   sync.Mutex
}

type Option func(*Gateway)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithTimeout bounds every remote call.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.client.Timeout = d }
}

// WithDeviceID tags requests with the terminal they came from.
func WithDeviceID(id string) Option {
	return func(g *Gateway) { g.deviceID = id }
}

func New(baseURL string, st *store.Store, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		store:   st,
	}
	g.online.Store(true)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Online reports whether the last remote call got an answer.
func (g *Gateway) Online() bool { return g.online.Load() }

func (g *Gateway) BaseURL() string { return g.baseURL }

// Store exposes the fallback store backing the gateway.
func (g *Gateway) Store() *store.Store { return g.store }

// do sends a JSON request and decodes a 2xx body into out.
func (g *Gateway) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}
	body, err := g.send(ctx, method, path, query, payload)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrRemoteUnavailable, method, path, err)
	}
	return nil
}

// send performs the call and classifies the outcome:
// transport errors, 5xx and non-JSON error pages are ErrRemoteUnavailable,
// a 4xx carrying {"error": ...} is a rejection by the service.
func (g *Gateway) send(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	target := g.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.deviceID != "" {
		req.Header.Set("X-Device-ID", g.deviceID)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.online.Store(false)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrRemoteUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		g.online.Store(false)
		return nil, fmt.Errorf("%w: read %s %s: %v", ErrRemoteUnavailable, method, path, err)
	}
	g.online.Store(resp.StatusCode < 500)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, classify(resp, body)
}

func classify(resp *http.Response, body []byte) error {
	re := &RemoteError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode), kind: ErrRemoteUnavailable}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if resp.StatusCode >= 500 || mediaType != "application/json" {
		return re
	}
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) != nil {
		return re
	}
	msg := envelope.Error
	if msg == "" {
		msg = envelope.Message
	}
	if msg == "" {
		return re
	}
	re.Message = msg

	switch resp.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		re.kind = ErrRemoteUnavailable
	case http.StatusNotFound:
		re.kind = ErrNotFound
	default:
		re.kind = ErrValidationFailed
	}
	return re
}
