package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"histedit.dev/histedit/internal/config"
	"histedit.dev/histedit/internal/runtime"
	"histedit.dev/histedit/internal/tui"
)

// newBaseCmd creates the base command
func newBaseCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "base <branch>",
		Short: "Rebuilds the plan against a different base branch",
		Long: `Rebuilds the plan against a different base branch. Dispositions
for commits still present in the rebuilt plan are carried over. When no
branch is given, prompts with a list of local branches.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.NewContext()
			if err != nil {
				return err
			}

			var newBase string
			if len(args) == 1 {
				newBase = args[0]
			} else {
				newBase, err = promptForBranch(cmd, rctx)
				if err != nil {
					return err
				}
			}

			state, err := rctx.Sessions.ChangeBase(cmd.Context(), rctx.RepoRoot, newBase)
			if err != nil {
				return err
			}

			if save {
				if err := config.SetBaseBranch(rctx.RepoRoot, newBase); err != nil {
					return err
				}
				rctx.Splog.Info("Saved %s as the default base branch", newBase)
			}

			renderState(rctx, state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Also save this branch as the repository's default base")

	return cmd
}

// promptForBranch asks the user to pick a base from the local branches,
// excluding the one being rebased
func promptForBranch(cmd *cobra.Command, rctx *runtime.Context) (string, error) {
	if !tui.IsInteractive() {
		return "", fmt.Errorf("a branch name is required; run 'histedit base <branch>'")
	}

	runner, err := rctx.Runner(cmd.Context())
	if err != nil {
		return "", err
	}

	branches, err := runner.ListBranches(cmd.Context())
	if err != nil {
		return "", err
	}

	var options []string
	for _, branch := range branches {
		if branch.IsRemote || branch.IsCurrent {
			continue
		}
		options = append(options, branch.Name)
	}
	if len(options) == 0 {
		return "", fmt.Errorf("no other local branches to rebase onto")
	}

	return tui.PromptSelect("Rebase onto which branch?", options, options[0])
}

// newStatusCmd creates the status command
func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Shows the current plan and rebase status",
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.NewContext()
			if err != nil {
				return err
			}

			state, err := rctx.Sessions.RebaseState(cmd.Context(), rctx.RepoRoot)
			if err != nil {
				return err
			}

			renderState(rctx, state)
			return nil
		},
	}

	return cmd
}
