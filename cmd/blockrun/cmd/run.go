package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/blockrun/blockrun/pkg/fileutil"
	"github.com/blockrun/blockrun/pkg/runner"
)

var (
	runTimeout   time.Duration
	runStepLimit int
	runJSON      bool
	runShowVars  bool
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	varStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

var runCmd = &cobra.Command{
	Use:   "run <program-file>",
	Short: "Execute a program file",
	Long: `Execute a program file in the sandboxed interpreter and print its
output. With --json the full execution report is printed instead, in the
same shape the HTTP API returns.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := fileutil.ReadProgramFile(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
		defer cancel()

		r := runner.New(runner.WithStepLimit(runStepLimit))
		result := r.Run(ctx, source)

		out := cmd.OutOrStdout()

		if runJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		for _, line := range result.Output {
			fmt.Fprintln(out, line)
		}

		if runShowVars && len(result.Variables) > 0 {
			names := make([]string, 0, len(result.Variables))
			for name := range result.Variables {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintln(out)
			for _, name := range names {
				fmt.Fprintln(out, varStyle.Render(fmt.Sprintf("%s = %s", name, result.Variables[name])))
			}
		}

		if !result.Success {
			return fmt.Errorf("%s", errorStyle.Render(result.Error))
		}

		fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render(fmt.Sprintf("ok (%d steps)", len(result.Steps))))
		return nil
	},
}

func init() {
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Second, "Execution time limit")
	runCmd.Flags().IntVar(&runStepLimit, "step-limit", 1_000_000, "Execution step budget (0 = unlimited)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the full execution report as JSON")
	runCmd.Flags().BoolVar(&runShowVars, "vars", false, "Print final variable values after the output")
	rootCmd.AddCommand(runCmd)
}
