package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/caffeineduck/termite/executor"
	"github.com/caffeineduck/termite/term"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a snippet and print its value",
	Long: `Evaluate a snippet and print the value of its last expression.

Code can be provided via:
  - File argument: termite run script.star
  - Inline flag: termite run -c '1 + 1'
  - Stdin: echo '1 + 1' | termite run

Bindings become globals of the snippet:
  termite run -c 'a + b' --bind a=1 --bind b=2
  termite run -c 'user["name"]' --bindings user.yaml`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runRun,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "Code to execute")
	cmd.Flags().StringArrayP("bind", "b", nil, "Binding name=value, value parsed as YAML (repeatable)")
	cmd.Flags().String("bindings", "", "JSON or YAML file with a mapping of bindings")
	cmd.Flags().String("entry", "", "Method to call on an instance of the type the snippet defines last")
	cmd.Flags().StringP("format", "f", "inspect", "Value format: inspect or json")
}

func runRun(cmd *cobra.Command, args []string) error {
	code, _ := cmd.Flags().GetString("code")
	format, _ := cmd.Flags().GetString("format")
	entry, _ := cmd.Flags().GetString("entry")

	var source, filename string
	switch {
	case code != "":
		source = code
	case len(args) > 0:
		filename = args[0]
		data, err := os.ReadFile(filename)
		if err != nil {
			return err
		}
		source = string(data)
	default:
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok {
			// No piped input, show help
			if stat, err := f.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
				return cmd.Help()
			}
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		source = string(data)
		if strings.TrimSpace(source) == "" {
			return cmd.Help()
		}
	}
	if format != "inspect" && format != "json" {
		return fmt.Errorf("unknown format %q: use inspect or json", format)
	}

	bindings, err := readBindings(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	lang, err := a.language(cmd, filename)
	if err != nil {
		return err
	}
	a.registerPackages(lang)

	opts := a.runOpts
	if filename != "" {
		opts = append(opts, executor.WithFilename(filename))
	}
	if entry != "" {
		opts = append(opts, executor.WithEntryPoint(executor.EntryPoint{Method: entry}))
	}

	result := a.exec.Run(context.Background(), lang, source, bindings, opts...)
	out := cmd.OutOrStdout()
	fmt.Fprint(out, result.Output)
	if result.Error != nil {
		return result.Error
	}
	return printValue(out, result.Value, format)
}

func printValue(w io.Writer, v term.Term, format string) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(term.ToNative(v))
	}
	_, err := fmt.Fprintln(w, v.String())
	return err
}

// readBindings merges --bindings and --bind, the latter winning.
func readBindings(cmd *cobra.Command) (term.Term, error) {
	file, _ := cmd.Flags().GetString("bindings")
	binds, _ := cmd.Flags().GetStringArray("bind")
	if file == "" && len(binds) == 0 {
		return nil, nil
	}

	vars := map[string]any{}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		// JSON documents are YAML too.
		if err := yaml.Unmarshal(data, &vars); err != nil {
			return nil, fmt.Errorf("bindings %s: %w", file, err)
		}
	}
	for _, b := range binds {
		name, value, err := parseBind(b)
		if err != nil {
			return nil, err
		}
		vars[name] = value
	}
	return term.FromNative(vars)
}

func parseBind(spec string) (string, any, error) {
	name, raw, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid binding %q (expected name=value)", spec)
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return "", nil, fmt.Errorf("binding %s: %w", name, err)
	}
	return name, value, nil
}
