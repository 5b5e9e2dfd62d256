package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	appName = "vuln-analyzer"
	version = "0.1.0"
)

// Exit codes. A run that completes exits 0 even when files failed or had
// no findings.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitModelError   = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Scan C/C++ source files for vulnerabilities with a local LLM",
	Long: "vuln-analyzer splits C and C++ source files into chunks, asks a local language model " +
		"to list vulnerabilities in each, and prints one deduplicated report per file.",
	SilenceUsage: true,
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print vuln-analyzer version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "%s version %s\n", appName, version)
	},
}
