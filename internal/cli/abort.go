package cli

import (
	"github.com/spf13/cobra"

	"histedit.dev/histedit/internal/config"
	"histedit.dev/histedit/internal/runtime"
	"histedit.dev/histedit/internal/tui"
)

// newAbortCmd creates the abort command
func newAbortCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "abort",
		Short: "Aborts the rebase and discards the plan",
		Long: `Aborts the in-progress rebase, restoring the branch to its state
before execution, and discards the plan.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.NewContext()
			if err != nil {
				return err
			}

			confirmAbort, err := config.GetConfirmAbort(rctx.RepoRoot)
			if err != nil {
				return err
			}

			if confirmAbort && !force && tui.IsInteractive() {
				confirmed, err := tui.PromptConfirm("Abort the rebase and discard the plan?", false)
				if err != nil {
					return err
				}
				if !confirmed {
					rctx.Splog.Info("Abort canceled")
					return nil
				}
			}

			state, err := rctx.Sessions.Abort(cmd.Context(), rctx.RepoRoot)
			if err != nil {
				return err
			}

			renderState(rctx, state)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}

// newResetCmd creates the reset command
func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discards all edits and rebuilds a fresh plan on the same base",
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.NewContext()
			if err != nil {
				return err
			}

			state, err := rctx.Sessions.Reset(cmd.Context(), rctx.RepoRoot)
			if err != nil {
				return err
			}

			renderState(rctx, state)
			return nil
		},
	}

	return cmd
}
