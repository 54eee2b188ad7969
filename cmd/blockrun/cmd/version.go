package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blockrun/blockrun/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "blockrun %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
