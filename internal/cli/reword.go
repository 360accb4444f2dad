package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"histedit.dev/histedit/internal/runtime"
	"histedit.dev/histedit/internal/tui"
)

// newRewordCmd creates the reword command
func newRewordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reword <commit> [message]",
		Short: "Sets the replacement message for a reworded commit",
		Long: `Sets the replacement message for a commit already marked 'reword'.
When no message is given on the command line, prompts for one.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.NewContext()
			if err != nil {
				return err
			}

			message := strings.Join(args[1:], " ")
			if message == "" {
				message, err = tui.PromptInput("New commit message:", "")
				if err != nil {
					return err
				}
			}

			state, err := rctx.Sessions.SetMessage(cmd.Context(), rctx.RepoRoot, args[0], message)
			if err != nil {
				return err
			}

			renderState(rctx, state)
			return nil
		},
	}

	return cmd
}
