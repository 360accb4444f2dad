package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"histedit.dev/histedit/internal/git"
	"histedit.dev/histedit/internal/runtime"
)

// newSetCmd creates the set command
func newSetCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "set <commit> <disposition>",
		Short: "Sets the disposition for a commit in the plan",
		Long: `Sets the disposition for a commit in the plan.

Dispositions: pick, reword, squash, fixup, drop, edit (or p/r/s/f/d/e).
The commit may be a full hash, short hash, or unique hash prefix.
A reword needs a message, given here with --message or later with
'histedit reword'.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disposition, err := git.ParseDisposition(args[1])
			if err != nil {
				return err
			}

			if message != "" && disposition != git.DispositionReword {
				return fmt.Errorf("--message only applies to reword, not %s", disposition)
			}

			rctx, err := runtime.NewContext()
			if err != nil {
				return err
			}

			state, err := rctx.Sessions.ChangeDisposition(cmd.Context(), rctx.RepoRoot, args[0], disposition, message)
			if err != nil {
				return err
			}

			renderState(rctx, state)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Replacement commit message (reword only)")

	return cmd
}
