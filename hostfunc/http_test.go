package hostfunc

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPGetBlockedWhenNoHosts(t *testing.T) {
	h := NewHTTP()
	_, err := h.Get(context.Background(), map[string]any{"url": "https://example.com"})
	if err == nil || err.Error() != "http not enabled" {
		t.Errorf("expected 'http not enabled', got %v", err)
	}
}

func TestHTTPGetBlockedForUnallowedHost(t *testing.T) {
	h := NewHTTP(WithAllowedHosts("allowed.com"))

	tests := []struct {
		name string
		url  string
		host string
	}{
		{"other host", "https://evil.com", "evil.com"},
		{"query param", "https://evil.com/?x=allowed.com", "evil.com"},
		{"suffix", "https://allowed.com.evil.com/", "allowed.com.evil.com"},
		{"userinfo", "https://allowed.com@evil.com/", "evil.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Get(context.Background(), map[string]any{"url": tt.url})
			if err == nil || err.Error() != "host not allowed: "+tt.host {
				t.Errorf("expected host not allowed, got %v", err)
			}
		})
	}
}

func TestHTTPGetAllowsExactHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	h := NewHTTP(WithAllowedHosts("127.0.0.1"))
	result, err := h.Get(context.Background(), map[string]any{"url": server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := result.(map[string]any)
	if data["status"].(int) != http.StatusOK {
		t.Errorf("expected status 200, got %v", data["status"])
	}
	if data["body"] != `{"ok": true}` {
		t.Errorf("unexpected body %q", data["body"])
	}
	if data["headers"].(map[string]any)["X-Test"] != "yes" {
		t.Errorf("expected X-Test header, got %v", data["headers"])
	}
}

func TestHTTPRequestMethodBodyHeaders(t *testing.T) {
	var gotMethod, gotBody, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	h := NewHTTP(WithAllowedHosts("127.0.0.1"))
	result, err := h.Request(context.Background(), map[string]any{
		"method":  "post",
		"url":     server.URL,
		"body":    "payload",
		"headers": map[string]any{"Authorization": "Bearer t"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(map[string]any)["status"].(int) != http.StatusCreated {
		t.Errorf("expected status 201, got %v", result)
	}
	if gotMethod != http.MethodPost || gotBody != "payload" || gotHeader != "Bearer t" {
		t.Errorf("unexpected request: %s %q %q", gotMethod, gotBody, gotHeader)
	}
}

func TestHTTPResponseBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	h := NewHTTP(WithAllowedHosts("127.0.0.1"), WithMaxBodySize(10))
	result, err := h.Get(context.Background(), map[string]any{"url": server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body := result.(map[string]any)["body"].(string); len(body) != 10 {
		t.Errorf("expected body truncated to 10 bytes, got %d", len(body))
	}

	_, err = h.Request(context.Background(), map[string]any{"method": "POST", "url": server.URL, "body": strings.Repeat("y", 11)})
	if err == nil || err.Error() != "request body exceeds max size" {
		t.Errorf("expected body size error, got %v", err)
	}
}

func TestHTTPRequestValidation(t *testing.T) {
	h := NewHTTP(WithAllowedHosts("example.com"), WithMaxURLLength(100))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing url", map[string]any{}, "url required"},
		{"invalid url", map[string]any{"url": "://invalid"}, "invalid url"},
		{"bad scheme", map[string]any{"url": "ftp://example.com/x"}, "scheme must be http or https"},
		{"bad method", map[string]any{"method": "TRACE", "url": "https://example.com"}, "unsupported method: TRACE"},
		{"url too long", map[string]any{"url": "https://example.com/" + strings.Repeat("a", 200)}, "url exceeds max length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Request(context.Background(), tt.args)
			if err == nil || err.Error() != tt.want {
				t.Errorf("expected %q, got %v", tt.want, err)
			}
		})
	}
}

func TestHTTPGetDefaultMaxURLLength(t *testing.T) {
	h := NewHTTP(WithAllowedHosts("example.com"))

	longURL := "https://example.com/" + strings.Repeat("a", 10*1024)
	_, err := h.Get(context.Background(), map[string]any{"url": longURL})
	if err == nil || err.Error() != "url exceeds max length" {
		t.Errorf("expected 'url exceeds max length' error, got %v", err)
	}
}

func TestHTTPHostMatching(t *testing.T) {
	tests := []struct {
		allowed string
		host    string
		want    bool
	}{
		{"example.com", "example.com", true},
		{"example.com", "api.example.com", true},
		{"example.com", "API.Example.com", true},
		{"example.com", "notexample.com", false},
		{"example.com", "127.0.0.1", false},
		{"example.com", "::1", false},
		{"::1", "::1", true},
		{"::1", "0:0:0:0:0:0:0:1", true},
		{"::1", "::2", false},
		{"::1", "example.com", false},
		{"192.168.1.1", "192.168.1.1", true},
		{"192.168.1.1", "::ffff:192.168.1.1", true},
		{"192.168.1.1", "192.168.1.2", false},
	}
	for _, tt := range tests {
		h := NewHTTP(WithAllowedHosts(tt.allowed))
		if got := h.isHostAllowed(tt.host); got != tt.want {
			t.Errorf("allow %q: isHostAllowed(%q) = %v, want %v", tt.allowed, tt.host, got, tt.want)
		}
	}
}

func TestHTTPRegister(t *testing.T) {
	r := NewRegistry()
	NewHTTP().Register(r)
	for _, name := range []string{"http_request", "http_get"} {
		if _, ok := r.Get(name); !ok {
			t.Errorf("expected %s to be registered", name)
		}
	}
}
