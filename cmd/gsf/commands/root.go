// Package commands provides the CLI commands for the go-sign-flow tool.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/tdinh-labs/go-sign-flow/internal/config"
)

var cfgFile string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gsf",
	Short: "go-sign-flow - Path-sensitive sign analysis for source code",
	Long: `go-sign-flow infers sign invariants (negative / zero / positive /
unknown) for every variable at every program point of a function, by
abstract interpretation over its control-flow graph.

Commands:
  cfg       Extract and print a function's control-flow graph
  analyze   Infer per-block sign invariants for a function
  check     Report possible division-by-zero sites in a file
  init      Create a configuration file interactively

Use "gsf [command] --help" for more information about a command.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig reads the configured (or default) config file.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.ConfigPath()
	}
	return config.Load(path)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.gsf/config.yaml)")

	// Add subcommands
	RootCmd.AddCommand(cfgCmd)
	RootCmd.AddCommand(analyzeCmd)
	RootCmd.AddCommand(checkCmd)
	RootCmd.AddCommand(initCmd)
}
