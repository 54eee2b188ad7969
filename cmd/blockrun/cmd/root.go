package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blockrun/blockrun/pkg/logger"
	"github.com/blockrun/blockrun/pkg/version"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "blockrun",
	Short: "Sandboxed interpreter for block-built programs",
	Long: `blockrun executes programs assembled from visual coding blocks in a
sandboxed interpreter and reports the output, the final variables, and an
execution trace.

Run a program file directly with "blockrun run", or start the HTTP API with
"blockrun serve".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logLevel)
	},
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("blockrun %s\n", version.String()))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
