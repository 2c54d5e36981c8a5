package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hellodb",
	Short: "Greets you with a message stored in PostgreSQL",
	Long: `hellodb reads a greeting from a PostgreSQL table and serves it over HTTP.

Database credentials are fetched from AWS SSM Parameter Store on every
request and a fresh connection is opened and closed each time.

Configuration comes from environment variables (optionally loaded from .env
files) layered over an optional hellodb.yaml.

Exit Codes:
  0  - Success
  1  - General error (including secret lookup failures)
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection or query failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().StringSlice("env-file", nil, "Load environment variables from these files (default: .env if present)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default: hellodb.yaml if present)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file, rotated by size")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}
