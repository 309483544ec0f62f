// Package ling implements provider.Provider against the Ling knowledge-base
// dialog endpoint.
package ling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lingchat/core/provider"
	"lingchat/core/stream"
	"lingchat/logger"
)

// errorBodyLimit caps how much of a failed response body is logged.
const errorBodyLimit = 512

// Ling implements Provider by POSTing the wire history to the dialog
// endpoint and streaming the line-framed reply.
type Ling struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

// NewLing creates a provider for baseURL joined with dialogPath. Only the
// dial is bounded by connectTimeout; a reply may stream indefinitely.
func NewLing(baseURL, dialogPath string, connectTimeout time.Duration, log *slog.Logger) (*Ling, error) {
	endpoint, err := Endpoint(baseURL, dialogPath)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if connectTimeout > 0 {
		transport.DialContext = (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext
	}

	return &Ling{
		client:   &http.Client{Transport: transport},
		endpoint: endpoint,
		logger:   log,
	}, nil
}

// Endpoint resolves the dialog URL.
func Endpoint(baseURL, dialogPath string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("parsing backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("backend url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("backend url %q: missing host", baseURL)
	}
	return u.JoinPath(dialogPath).String(), nil
}

// URL returns the dialog endpoint.
func (l *Ling) URL() string {
	return l.endpoint
}

// Send posts req and returns an iterator over the streamed frames. A
// non-success status is returned as *provider.StatusError.
func (l *Ling) Send(ctx context.Context, req provider.Request) (provider.FrameIterator, error) {
	if req.Messages == nil {
		req.Messages = []provider.WireMessage{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("posting dialog: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		resp.Body.Close()
		l.logger.Warn("dialog request rejected", "status", resp.StatusCode, "body", string(snippet))
		return nil, &provider.StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return &lingIterator{
		body:  resp.Body,
		lines: stream.NewLineReader(resp.Body),
	}, nil
}
