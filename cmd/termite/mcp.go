package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/caffeineduck/termite/handler"
	"github.com/caffeineduck/termite/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Serve snippets to MCP clients over stdio.

The server always offers an "execute" tool. With --handlers, every handler
script in the directory becomes one more tool, named after its handler.`,
	RunE:          runMCP,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	mcpCmd.Flags().String("handlers", "", "Directory of handler scripts (*.star, *.py)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	lang, err := a.language(cmd, "")
	if err != nil {
		return err
	}
	a.registerPackages(lang)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []mcp.Option{
		mcp.WithRunOptions(a.runOpts...),
		mcp.WithLogger(a.logger),
		mcp.WithVersion(version()),
	}
	if dir := a.cfg.HandlersDir; dir != "" {
		scripts, err := handler.LoadFS(ctx, a.exec, lang, os.DirFS(dir))
		if err != nil {
			return err
		}
		a.logger.Info("handlers loaded", zap.String("dir", dir), zap.Int("count", len(scripts)))
		opts = append(opts, mcp.WithHandlers(scripts...))
	}

	srv, err := mcp.NewServer(a.exec, lang, opts...)
	if err != nil {
		return err
	}
	return srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
