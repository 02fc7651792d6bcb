// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/khsolheim/tms-mobile-sync/models"
)

// HTTPClientConfig configures the resty-backed remote adapter.
type HTTPClientConfig struct {
	BaseURL    string
	HealthPath string
	Timeout    time.Duration
}

type httpRemoteAdapter struct {
	client     *resty.Client
	healthPath string

	mu    sync.RWMutex
	token string
}

// NewHTTPRemoteAdapter constructs a [RemoteAdapter] speaking plain REST
// against the TMS API.
func NewHTTPRemoteAdapter(cfg HTTPClientConfig) RemoteAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.HealthPath == "" {
		cfg.HealthPath = "/health"
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &httpRemoteAdapter{client: cli, healthPath: cfg.HealthPath}
}

func (h *httpRemoteAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpRemoteAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Execute implements [RemoteAdapter]. The response status code is the sole
// success signal; request bodies are forwarded verbatim.
func (h *httpRemoteAdapter) Execute(ctx context.Context, action models.QueuedAction) error {
	req := h.authedRequest(ctx)
	if len(action.Payload) > 0 {
		req.SetHeader("Content-Type", "application/json").SetBody([]byte(action.Payload))
	}

	var (
		resp *resty.Response
		err  error
	)
	switch strings.ToUpper(action.Method) {
	case http.MethodGet:
		resp, err = req.Get(action.Endpoint)
	case http.MethodPost:
		resp, err = req.Post(action.Endpoint)
	case http.MethodPut:
		resp, err = req.Put(action.Endpoint)
	case http.MethodDelete:
		resp, err = req.Delete(action.Endpoint)
	default:
		return fmt.Errorf("%w: unsupported method %q", ErrPermanent, action.Method)
	}
	if err != nil {
		// Transport-level failure: DNS, refused connection, timeout.
		return fmt.Errorf("%w: execute %s %s: %w", ErrTransient, action.Method, action.Endpoint, err)
	}

	return mapHTTPError(resp)
}

// Ping implements [RemoteAdapter]. Any answer from the remote, including an
// error status, proves reachability.
func (h *httpRemoteAdapter) Ping(ctx context.Context) error {
	_, err := h.client.R().SetContext(ctx).Head(h.healthPath)
	if err != nil {
		return fmt.Errorf("%w: ping: %w", ErrTransient, err)
	}
	return nil
}

func (h *httpRemoteAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}

	if code == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", ErrPermanent, ErrUnauthorized)
	}
	if code >= http.StatusBadRequest && code < http.StatusInternalServerError {
		return fmt.Errorf("%w: http %d: %s", ErrPermanent, code, body)
	}

	return fmt.Errorf("%w: http %d: %s", ErrTransient, code, body)
}
