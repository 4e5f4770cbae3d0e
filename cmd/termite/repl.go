package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/caffeineduck/termite/executor"
	"github.com/caffeineduck/termite/term"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive REPL with persistent state",
	Long: `Start an interactive REPL (Read-Eval-Print Loop) session.

Features:
  - Command history (up/down arrows)
  - Line editing (left/right, backspace, delete)
  - History search (Ctrl+R)
  - Multi-line input (end line with \)
  - :names lists the names defined so far

Type 'exit' or 'quit' to end the session, or press Ctrl+D.`,
	RunE:          runRepl,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	replCmd.Flags().String("history", "", "History file path (default: ~/.termite_history)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	historyFile, _ := cmd.Flags().GetString("history")
	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".termite_history")
	}

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

	session, err := a.exec.NewSession(lang, a.runOpts...)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer session.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            ">>> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "termite %s REPL (type 'exit' to quit, Ctrl+D to exit)\n", lang.Name())

	var multiLine strings.Builder
	inMultiLine := false

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if inMultiLine {
					multiLine.Reset()
					inMultiLine = false
					rl.SetPrompt(">>> ")
				}
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(stdout)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		// Handle multi-line input
		if strings.HasSuffix(line, "\\") {
			multiLine.WriteString(strings.TrimSuffix(line, "\\"))
			multiLine.WriteString("\n")
			inMultiLine = true
			rl.SetPrompt("... ")
			continue
		}

		if inMultiLine {
			multiLine.WriteString(line)
			line = multiLine.String()
			multiLine.Reset()
			inMultiLine = false
			rl.SetPrompt(">>> ")
		}

		if strings.TrimSpace(line) == "exit" || strings.TrimSpace(line) == "quit" {
			return nil
		}
		replEval(context.Background(), session, line, stdout, stderr)
	}
}

// replEval runs one REPL entry and prints its output and value. Nil values
// are not echoed.
func replEval(ctx context.Context, session *executor.Session, line string, stdout, stderr io.Writer) {
	if !strings.Contains(line, "\n") {
		line = strings.TrimSpace(line)
	}
	if line == "" {
		return
	}
	if line == ":names" {
		fmt.Fprintln(stdout, strings.Join(session.Names(), " "))
		return
	}

	result := session.Run(ctx, line)
	if result.Output != "" {
		fmt.Fprint(stdout, result.Output)
		if !strings.HasSuffix(result.Output, "\n") {
			fmt.Fprintln(stdout)
		}
	}
	if result.Error != nil {
		fmt.Fprintf(stderr, "Error: %v\n", result.Error)
		return
	}
	if _, isNil := result.Value.(term.Nil); result.Value != nil && !isNil {
		fmt.Fprintln(stdout, result.Value.String())
	}
}
