// Package cli wires the cobra command tree for histedit.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "histedit",
		Short: "Histedit is a command line tool for rewriting branch history interactively",
		Long: `Histedit is a command line tool for rewriting branch history interactively.

Build a plan of your branch's commits, mark them pick/reword/squash/fixup/drop/edit,
then execute the plan as a single rebase with conflict handling built in.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newSetCmd())
	rootCmd.AddCommand(newRewordCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newExecuteCmd())
	rootCmd.AddCommand(newContinueCmd())
	rootCmd.AddCommand(newAbortCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newBaseCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newStashCmd())
	rootCmd.AddCommand(newBranchesCmd())

	return rootCmd
}
