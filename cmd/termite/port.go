package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caffeineduck/termite/internal/port"
)

var portCmd = &cobra.Command{
	Use:   "port",
	Short: "Serve requests from an Erlang port on stdin/stdout",
	Long: `Answer requests framed as {packet, 4} external terms on stdin, replying on
stdout. Open the port from the host with:

  Port.open({:spawn_executable, path}, [:binary, {:packet, 4}, args: ["port"]])

Requests are {call, Id, Fun, Args}; replies are {ok, Id, Result} or
{error, Id, Detail}. Functions: execute(Code, Bindings), list_packages(),
check_package(Name), import_package(Name), describe_handler(Code).`,
	RunE:          runPort,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	portCmd.Flags().Int("max-frame", 64<<20, "Largest accepted request frame in bytes")
	rootCmd.AddCommand(portCmd)
}

func runPort(cmd *cobra.Command, args []string) error {
	maxFrame, _ := cmd.Flags().GetInt("max-frame")

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

	p := port.New(a.exec, lang,
		port.WithRunOptions(a.runOpts...),
		port.WithLogger(a.logger),
		port.WithMaxFrame(maxFrame),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return p.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
