package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/caffeineduck/termite/packages"
	"github.com/caffeineduck/termite/term"
)

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Inspect the modules snippets can load()",
}

var packagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List modules and their versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCatalog(cmd, func(c *packages.Catalog) *term.Mapping { return c.List() })
	},
}

var packagesCheckCmd = &cobra.Command{
	Use:   "check <name>",
	Short: "Report whether a module is available",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCatalog(cmd, func(c *packages.Catalog) *term.Mapping { return c.Check(args[0]) })
	},
}

var packagesImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Try loading a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCatalog(cmd, func(c *packages.Catalog) *term.Mapping { return c.Import(args[0]) })
	},
}

func init() {
	for _, c := range []*cobra.Command{packagesCmd, packagesListCmd, packagesCheckCmd, packagesImportCmd} {
		c.SilenceUsage = true
		c.SilenceErrors = true
	}
	packagesCmd.AddCommand(packagesListCmd, packagesCheckCmd, packagesImportCmd)
	rootCmd.AddCommand(packagesCmd)
}

// printCatalog writes the reply of fn for the configured language's catalog
// as JSON.
func printCatalog(cmd *cobra.Command, fn func(*packages.Catalog) *term.Mapping) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lang, err := getLanguage(cfg.Language)
	if err != nil {
		return err
	}
	catalog := lang.Packages()
	if catalog == nil {
		catalog = packages.New()
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(term.ToNative(fn(catalog)))
}
