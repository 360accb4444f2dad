package cli

import (
	"github.com/spf13/cobra"

	"histedit.dev/histedit/internal/config"
	"histedit.dev/histedit/internal/probe"
	"histedit.dev/histedit/internal/runtime"
)

// newPlanCmd creates the plan command
func newPlanCmd() *cobra.Command {
	var baseBranch string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Builds a rebase plan for the current branch",
		Long: `Builds a rebase plan for the current branch against a base branch.
The plan lists every commit unique to the branch, newest first, each starting
as 'pick'. Edit it with 'histedit set', 'histedit reword' or 'histedit edit',
then run 'histedit execute'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.NewContext()
			if err != nil {
				return err
			}

			if baseBranch == "" {
				baseBranch, err = config.GetBaseBranch(rctx.RepoRoot)
				if err != nil {
					return err
				}
			}

			state, err := rctx.Sessions.StartPlanning(cmd.Context(), rctx.RepoRoot, baseBranch)
			if err != nil {
				return err
			}

			renderState(rctx, state)

			if probeOnPlan, _ := config.GetProbeOnPlan(rctx.RepoRoot); probeOnPlan {
				warnConflictingStashes(cmd, rctx)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&baseBranch, "base", "b", "", "Base branch to rebase onto (defaults to configured or detected base)")

	return cmd
}

// warnConflictingStashes runs the stash conflict probe as a pre-flight check
func warnConflictingStashes(cmd *cobra.Command, rctx *runtime.Context) {
	runner, err := rctx.Runner(cmd.Context())
	if err != nil {
		return
	}

	stashes, results, err := probe.CheckStashes(cmd.Context(), runner)
	if err != nil {
		rctx.Splog.Debug("stash probe failed: %v", err)
		return
	}

	for _, stash := range stashes {
		result := results[stash.Ref]
		if result.Err != nil || result.Clean() {
			continue
		}
		rctx.Splog.Warn("stash %s would conflict with %d file(s) if applied after this rebase", stash.Ref, len(result.Files))
	}
}
