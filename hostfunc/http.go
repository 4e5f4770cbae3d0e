package hostfunc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultMaxURLLength   = 8192
	DefaultMaxBodySize    = 1 << 20
	DefaultRequestTimeout = 30 * time.Second
)

var errHTTPDisabled = errors.New("http not enabled")

// HTTPOption configures an HTTP.
type HTTPOption func(*HTTP)

// WithAllowedHosts lists the hosts snippets may reach. A host also allows
// its subdomains. IP addresses match only themselves.
func WithAllowedHosts(hosts ...string) HTTPOption {
	return func(h *HTTP) { h.allowed = append(h.allowed, hosts...) }
}

// WithMaxBodySize bounds request and response bodies.
func WithMaxBodySize(n int64) HTTPOption {
	return func(h *HTTP) { h.maxBody = n }
}

// WithMaxURLLength bounds the length of request URLs.
func WithMaxURLLength(n int) HTTPOption {
	return func(h *HTTP) { h.maxURL = n }
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) { h.client.Timeout = d }
}

// WithHTTPClient replaces the client used for requests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// HTTP performs outbound requests for snippets, restricted to an allowlist.
// With no allowed hosts every request fails.
type HTTP struct {
	allowed []string
	maxBody int64
	maxURL  int
	client  *http.Client
}

func NewHTTP(opts ...HTTPOption) *HTTP {
	h := &HTTP{
		maxBody: DefaultMaxBodySize,
		maxURL:  DefaultMaxURLLength,
		client:  &http.Client{Timeout: DefaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds http_request and http_get to r.
func (h *HTTP) Register(r *Registry) {
	r.Register("http_request", h.Request)
	r.Register("http_get", h.Get)
}

// Get is Request with the method forced to GET.
func (h *HTTP) Get(ctx context.Context, args map[string]any) (any, error) {
	var req HTTPRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	req.Method = http.MethodGet
	return h.do(ctx, req)
}

// Request returns {status, body, headers} for the response.
func (h *HTTP) Request(ctx context.Context, args map[string]any) (any, error) {
	var req HTTPRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return h.do(ctx, req)
}

func (h *HTTP) do(ctx context.Context, r HTTPRequest) (any, error) {
	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		http.MethodPatch, http.MethodHead, http.MethodOptions:
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}

	if r.URL == "" {
		return nil, errors.New("url required")
	}
	if len(r.URL) > h.maxURL {
		return nil, errors.New("url exceeds max length")
	}
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return nil, errors.New("invalid url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("scheme must be http or https")
	}
	if len(h.allowed) == 0 {
		return nil, errHTTPDisabled
	}
	if host := parsed.Hostname(); !h.isHostAllowed(host) {
		return nil, fmt.Errorf("host not allowed: %s", host)
	}

	var body io.Reader
	if r.Body != "" {
		if int64(len(r.Body)) > h.maxBody {
			return nil, errors.New("request body exceeds max size")
		}
		body = strings.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	headers := make(map[string]any, len(resp.Header))
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	return map[string]any{
		"status":  resp.StatusCode,
		"body":    string(respBody),
		"headers": headers,
	}, nil
}

func (h *HTTP) isHostAllowed(host string) bool {
	if addr, err := netip.ParseAddr(host); err == nil {
		for _, allowed := range h.allowed {
			if a, err := netip.ParseAddr(allowed); err == nil && a.Unmap() == addr.Unmap() {
				return true
			}
		}
		return false
	}
	host = strings.ToLower(host)
	for _, allowed := range h.allowed {
		allowed = strings.ToLower(allowed)
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
