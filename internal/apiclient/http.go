package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerUserAgent     = "User-Agent"
	contentTypeJSON     = "application/json"
	userAgent           = "storefront-go/1.0"

	maxResponseBytes = 8 << 20
)

// bearer adds the access token of the bound session, if any.
func (c *Client) bearer(ctx context.Context, req *http.Request) error {
	if c.store == nil {
		return nil
	}
	s, err := c.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if s.AccessToken != "" {
		req.Header.Set(headerAuthorization, "Bearer "+s.AccessToken)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, body, result any) error {
	var reader io.Reader
	var contentType string
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindDecode, Err: fmt.Errorf("marshal request body: %w", err)}
		}
		reader = bytes.NewReader(b)
		contentType = contentTypeJSON
	}
	return c.send(ctx, op, method, path, query, contentType, reader, result)
}

func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, contentType string, body io.Reader, result any) error {
	l := logging.FromContext(ctx).With("op", op)

	reqURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return &Error{Kind: KindTransport, Err: fmt.Errorf("build url: %w", err)}
	}
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return &Error{Kind: KindTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set(headerAccept, contentTypeJSON)
	req.Header.Set(headerUserAgent, userAgent)
	if contentType != "" {
		req.Header.Set(headerContentType, contentType)
	}

	if err := c.bearer(ctx, req); err != nil {
		return &Error{Kind: KindTransport, Err: err}
	}
	for _, edit := range c.editors {
		if err := edit(ctx, req); err != nil {
			return &Error{Kind: KindTransport, Err: fmt.Errorf("request editor: %w", err)}
		}
	}
	withBearer := req.Header.Get(headerAuthorization) != ""

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(op, 0, start)
		l.Warn("api_request_failed", "error", err)
		return &Error{Kind: KindTransport, Message: "network error", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.observe(op, resp.StatusCode, start)
	if err != nil {
		return &Error{Kind: KindTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		apiErr := parseError(resp.StatusCode, respBody)
		if resp.StatusCode == http.StatusUnauthorized && withBearer && c.store != nil {
			if err := c.store.Clear(ctx); err != nil {
				l.Error("session_clear_failed", "error", err)
			}
			apiErr.Err = ErrSessionExpired
		}
		l.Debug("api_request_rejected", "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &Error{Kind: KindDecode, StatusCode: resp.StatusCode, Err: fmt.Errorf("parse response: %w", err)}
		}
	}

	l.Debug("api_request", "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (c *Client) observe(op string, status int, start time.Time) {
	if c.observer != nil {
		c.observer(op, status, time.Since(start))
	}
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, result any) error {
	return c.doJSON(ctx, op, http.MethodGet, path, query, nil, result)
}

func (c *Client) post(ctx context.Context, op, path string, body, result any) error {
	return c.doJSON(ctx, op, http.MethodPost, path, nil, body, result)
}

func (c *Client) patch(ctx context.Context, op, path string, body, result any) error {
	return c.doJSON(ctx, op, http.MethodPatch, path, nil, body, result)
}

func (c *Client) delete(ctx context.Context, op, path string) error {
	return c.doJSON(ctx, op, http.MethodDelete, path, nil, nil, nil)
}

// ResolveImage turns a relative media path into an absolute URL.
func (c *Client) ResolveImage(p string) string {
	p = strings.TrimSpace(p)
	switch {
	case p == "":
		return PlaceholderImage
	case strings.HasPrefix(p, "http"):
		return p
	}
	return strings.TrimRight(c.mediaURL, "/") + "/" + strings.TrimLeft(p, "/")
}

func segment(v any) string {
	return url.PathEscape(fmt.Sprint(v))
}
