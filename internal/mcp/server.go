// Package mcp exposes the executor and handler scripts as Model Context
// Protocol tools.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/caffeineduck/termite/executor"
	"github.com/caffeineduck/termite/handler"
	"github.com/caffeineduck/termite/term"
)

// ExecuteTool is the name of the tool running arbitrary snippets.
const ExecuteTool = "execute"

// Server wraps an MCP server whose tools run snippets.
type Server struct {
	exec      *executor.Executor
	lang      executor.Language
	runOpts   []executor.Option
	logger    *zap.Logger
	version   string
	scripts   []*handler.Script
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithRunOptions applies opts to every tool call.
func WithRunOptions(opts ...executor.Option) Option {
	return func(s *Server) { s.runOpts = append(s.runOpts, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the version reported to clients.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithHandlers publishes one tool per handler script, named after the
// handler.
func WithHandlers(scripts ...*handler.Script) Option {
	return func(s *Server) { s.scripts = append(s.scripts, scripts...) }
}

// NewServer creates the server and registers its tools. Handler names must
// be unique and must not shadow the execute tool.
func NewServer(exec *executor.Executor, lang executor.Language, opts ...Option) (*Server, error) {
	s := &Server{
		exec:    exec,
		lang:    lang,
		logger:  zap.NewNop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("termite", s.version)

	s.registerExecute()
	seen := map[string]bool{ExecuteTool: true}
	for _, script := range s.scripts {
		if seen[script.Name] {
			return nil, fmt.Errorf("duplicate tool name %q (%s)", script.Name, script.Path())
		}
		seen[script.Name] = true
		if err := s.registerHandler(script); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio serves on the process's stdin and stdout until ctx is done.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve speaks the stdio transport over r and w.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	return stdio.Listen(ctx, r, w)
}

func (s *Server) registerExecute() {
	tool := mcp.NewTool(ExecuteTool,
		mcp.WithDescription(fmt.Sprintf("Run a %s snippet. The value of the last expression is returned.", s.lang.Name())),
		mcp.WithString("code", mcp.Required(), mcp.Description("Snippet source")),
		mcp.WithObject("bindings", mcp.Description("Global names available to the snippet")),
	)
	s.mcpServer.AddTool(tool, s.handleExecute)
}

func (s *Server) handleExecute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var bindings term.Term
	if raw, ok := request.GetArguments()["bindings"]; ok && raw != nil {
		if bindings, err = toTerm(raw); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("bindings: %v", err)), nil
		}
	}

	result := s.exec.Run(ctx, s.lang, code, bindings, s.runOpts...)
	if result.Error != nil {
		s.logger.Debug("execute failed", zap.Error(result.Error))
		return mcp.NewToolResultError(result.Error.Error()), nil
	}
	return mcp.NewToolResultStructured(map[string]any{
		"value":  term.ToNative(result.Value),
		"output": result.Output,
	}, result.Value.String()), nil
}

func (s *Server) registerHandler(script *handler.Script) error {
	schema := map[string]any{}
	for k, v := range script.InputSchema {
		schema[k] = v
	}
	if _, ok := schema["type"]; !ok {
		schema["type"] = "object"
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("handler %s: input_schema: %w", script.Name, err)
	}

	tool := mcp.NewToolWithRawSchema(script.Name, script.Description, raw)
	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.invoke(ctx, script, request)
	})
	return nil
}

func (s *Server) invoke(ctx context.Context, script *handler.Script, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetRawArguments()
	if args == nil {
		args = map[string]any{}
	}
	input, err := toTerm(args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("arguments: %v", err)), nil
	}
	callCtx := term.NewMapping(
		term.Pair{Key: term.Bytes("tool"), Value: term.Bytes(script.Name)},
		term.Pair{Key: term.Bytes("handler_id"), Value: term.Bytes(script.ID)},
	)

	value, err := script.Invoke(ctx, input, callCtx, s.runOpts...)
	if err != nil && !errors.Is(err, handler.ErrInvalidInput) {
		s.logger.Debug("handler failed", zap.String("handler", script.Name), zap.Error(err))
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if b, ok := value.(term.Bytes); ok {
		return mcp.NewToolResultText(string(b)), nil
	}
	return mcp.NewToolResultStructured(term.ToNative(value), value.String()), nil
}

// toTerm converts decoded JSON arguments into a Term. Integral numbers stay
// integers.
func toTerm(v any) (term.Term, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var native any
	if err := dec.Decode(&native); err != nil {
		return nil, err
	}
	return term.FromNative(native)
}
