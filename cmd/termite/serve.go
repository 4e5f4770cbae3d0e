package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caffeineduck/termite/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for snippet execution",
	Long: `Start an HTTP server that provides REST endpoints for snippet execution.

Endpoints:
  POST   /execute                  Execute a snippet (stateless)
  POST   /sessions                 Create session, returns {"session_id":"..."}
  POST   /sessions/{id}/exec       Execute in session (state persists)
  DELETE /sessions/{id}            Close session
  GET    /packages                 List loadable modules
  GET    /packages/{name}          Check a module
  POST   /packages/{name}/import   Try loading a module
  GET    /health                   Health check
  GET    /metrics                  Prometheus metrics`,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	// The configured language is the default; the other stays selectable.
	primary, err := getLanguage(a.cfg.Language)
	if err != nil {
		return err
	}
	a.registerPackages(primary)
	opts := []server.Option{server.WithLanguage(primary)}
	for _, name := range []string{"python", "starlark"} {
		if name != primary.Name() {
			lang, _ := getLanguage(name)
			opts = append(opts, server.WithLanguage(lang))
		}
	}
	opts = append(opts,
		server.WithGatherer(a.registry),
		server.WithLogger(a.logger),
		server.WithTimeout(a.cfg.Timeout),
		server.WithRunOptions(a.runOpts...),
		server.WithSessionTTL(a.cfg.Serve.SessionTTL),
	)

	srv, err := server.New(a.exec, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, a.cfg.Serve.Addr)
}
