package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tracereport/internal/version"
)

// newRootCmd builds the command tree with its persistent flags.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tracereport",
		Short: "Trace recording report tool",
		Long:  `tracereport replays recorded JIT trace notifications and prints the trace report`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupSession(cmd)
		},
		SilenceUsage: true,
		Version:      version.String(),
	}

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Bool("timings", false, "show phase timings on stderr")
	rootCmd.PersistentFlags().String("trace", "", "write internal spans to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "span level (off|report|phase|detail)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "span format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write heap profile to file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write Go runtime trace to file")
	return rootCmd
}

// main runs the root command. Any command error exits with status 1.
func main() {
	err := newRootCmd().Execute()
	teardownSession()
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
