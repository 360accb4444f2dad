package cli

import (
	"github.com/spf13/cobra"

	"histedit.dev/histedit/internal/runtime"
)

// newExecuteCmd creates the execute command
func newExecuteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Executes the current rebase plan",
		Long: `Executes the current rebase plan as a single interactive rebase.
Requires a clean working tree and a complete plan (every reword has a
message). Pauses on conflicts and on 'edit' stops; resume with
'histedit continue' or back out with 'histedit abort'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.NewContext()
			if err != nil {
				return err
			}

			state, err := rctx.Sessions.Execute(cmd.Context(), rctx.RepoRoot)
			if err != nil {
				return err
			}

			renderState(rctx, state)
			return nil
		},
	}

	return cmd
}

// newContinueCmd creates the continue command
func newContinueCmd() *cobra.Command {
	var stageAll bool

	cmd := &cobra.Command{
		Use:   "continue",
		Short: "Continues a rebase paused on a conflict or edit stop",
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.NewContext()
			if err != nil {
				return err
			}

			if stageAll {
				runner, err := rctx.Runner(cmd.Context())
				if err != nil {
					return err
				}
				if err := runner.StageAll(cmd.Context()); err != nil {
					return err
				}
			}

			state, err := rctx.Sessions.Continue(cmd.Context(), rctx.RepoRoot)
			if err != nil {
				return err
			}

			renderState(rctx, state)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&stageAll, "all", "a", false, "Stage all changes before continuing")

	return cmd
}
