// Package server exposes the executor over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/caffeineduck/termite/executor"
	"github.com/caffeineduck/termite/packages"
	"github.com/caffeineduck/termite/term"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"

const maxBodySize = 1 << 20

// Server serves the HTTP surface.
type Server struct {
	exec        *executor.Executor
	langs       map[string]executor.Language
	defaultLang string
	catalog     *packages.Catalog
	gatherer    prometheus.Gatherer
	logger      *zap.Logger
	runOpts     []executor.Option
	timeout     time.Duration
	sessions    *sessionManager
}

// Option configures a Server.
type Option func(*Server)

// WithLanguage makes lang selectable by name. The first language added is
// the default.
func WithLanguage(lang executor.Language) Option {
	return func(s *Server) {
		if s.defaultLang == "" {
			s.defaultLang = lang.Name()
		}
		s.langs[lang.Name()] = lang
	}
}

// WithCatalog serves the package endpoints from c.
func WithCatalog(c *packages.Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

// WithGatherer serves /metrics from g. The default is the global registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRunOptions applies opts to every run.
func WithRunOptions(opts ...executor.Option) Option {
	return func(s *Server) { s.runOpts = append(s.runOpts, opts...) }
}

// WithTimeout sets the default execution timeout of a request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithSessionTTL closes sessions idle for longer than ttl.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) { s.sessions.ttl = ttl }
}

// New creates a Server. At least one language must be configured.
func New(exec *executor.Executor, opts ...Option) (*Server, error) {
	s := &Server{
		exec:     exec,
		langs:    make(map[string]executor.Language),
		gatherer: prometheus.DefaultGatherer,
		logger:   zap.NewNop(),
		timeout:  30 * time.Second,
		sessions: newSessionManager(15 * time.Minute),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultLang == "" {
		return nil, fmt.Errorf("server: no language configured")
	}
	if s.catalog == nil {
		s.catalog = s.langs[s.defaultLang].Packages()
	}
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(maxBodySize))

	r.Post("/execute", s.handleExecute)

	r.Post("/sessions", s.handleCreateSession)
	r.Post("/sessions/{id}/exec", s.handleSessionExec)
	r.Delete("/sessions/{id}", s.handleCloseSession)

	r.Get("/packages", s.handleListPackages)
	r.Get("/packages/{name}", s.handleCheckPackage)
	r.Post("/packages/{name}/import", s.handleImportPackage)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	go s.sessions.cleanup(ctx)
	defer s.sessions.closeAll()

	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// Close closes every open session.
func (s *Server) Close() {
	s.sessions.closeAll()
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type executeRequest struct {
	Code     string          `json:"code"`
	Bindings json.RawMessage `json:"bindings,omitempty"`
	Lang     string          `json:"lang,omitempty"`
	Timeout  string          `json:"timeout,omitempty"`
}

type executeResponse struct {
	Value      any    `json:"value"`
	Inspect    string `json:"inspect,omitempty"`
	Output     string `json:"output"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func (s *Server) language(name string) (executor.Language, error) {
	if name == "" {
		name = s.defaultLang
	}
	lang, ok := s.langs[name]
	if !ok {
		return nil, fmt.Errorf("unknown language %q", name)
	}
	return lang, nil
}

func (s *Server) runOptions(timeout string) ([]executor.Option, error) {
	opts := append([]executor.Option{executor.WithTimeout(s.timeout)}, s.runOpts...)
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		opts = append(opts, executor.WithTimeout(d))
	}
	return opts, nil
}

// decodeBindings reads a JSON object into a Mapping. Numbers keep their
// integer precision.
func decodeBindings(raw json.RawMessage) (term.Term, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v map[string]any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("bindings must be a JSON object: %w", err)
	}
	return term.FromNative(v)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Code == "" {
		http.Error(w, "code required", http.StatusBadRequest)
		return
	}
	lang, err := s.language(req.Lang)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, err := s.runOptions(req.Timeout)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bindings, err := decodeBindings(req.Bindings)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := s.exec.Run(r.Context(), lang, req.Code, bindings, opts...)
	writeJSON(w, s.response(result))
}

func (s *Server) response(result executor.Result) executeResponse {
	resp := executeResponse{
		Output:     result.Output,
		DurationMs: result.Duration.Milliseconds(),
	}
	if result.Value != nil {
		resp.Value = term.ToNative(result.Value)
		resp.Inspect = result.Value.String()
	}
	if result.Error != nil {
		resp.Error = result.Error.Error()
	}
	return resp
}

type createSessionRequest struct {
	Lang string `json:"lang,omitempty"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

type sessionExecRequest struct {
	Code    string `json:"code"`
	Timeout string `json:"timeout,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	lang, err := s.language(req.Lang)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, _ := s.runOptions("")
	id, err := s.sessions.create(s.exec, lang, opts...)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to create session: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, createSessionResponse{SessionID: id})
}

func (s *Server) handleSessionExec(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	var req sessionExecRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Code == "" {
		http.Error(w, "code required", http.StatusBadRequest)
		return
	}
	var opts []executor.Option
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil {
			http.Error(w, "invalid timeout", http.StatusBadRequest)
			return
		}
		opts = append(opts, executor.WithTimeout(d))
	}

	result := session.Run(r.Context(), req.Code, opts...)
	if result.Error == executor.ErrSessionBusy {
		http.Error(w, result.Error.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, s.response(result))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if s.sessions.close(chi.URLParam(r, "id")) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Error(w, "session not found", http.StatusNotFound)
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, term.ToNative(s.catalog.List()))
}

func (s *Server) handleCheckPackage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, term.ToNative(s.catalog.Check(chi.URLParam(r, "name"))))
}

func (s *Server) handleImportPackage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, term.ToNative(s.catalog.Import(chi.URLParam(r, "name"))))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
