package cli

import (
	"github.com/spf13/cobra"

	"histedit.dev/histedit/internal/config"
	"histedit.dev/histedit/internal/probe"
	"histedit.dev/histedit/internal/runtime"
	"histedit.dev/histedit/internal/tui"
)

// newStashCmd creates the stash command
func newStashCmd() *cobra.Command {
	var noBadges bool

	cmd := &cobra.Command{
		Use:   "stash",
		Short: "Lists stash entries with conflict badges",
		Long: `Lists stash entries. Each entry is probed with a non-destructive
trial apply against HEAD; entries that would conflict are badged with the
files that would need resolving. The probe never touches the working tree
or index.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.NewContext()
			if err != nil {
				return err
			}

			runner, err := rctx.Runner(cmd.Context())
			if err != nil {
				return err
			}

			badges, err := config.GetStashBadges(rctx.RepoRoot)
			if err != nil {
				return err
			}
			if noBadges {
				badges = false
			}

			if !badges {
				stashes, err := runner.ListStashes(cmd.Context())
				if err != nil {
					return err
				}
				for _, stash := range stashes {
					rctx.Splog.Info("%s %s", tui.ColorCyan(stash.Ref), stash.Message)
				}
				return nil
			}

			stashes, results, err := probe.CheckStashes(cmd.Context(), runner)
			if err != nil {
				return err
			}

			for _, stash := range stashes {
				line := tui.ColorCyan(stash.Ref) + " " + stash.Message

				result := results[stash.Ref]
				switch {
				case result.Err != nil:
					line += " " + tui.ColorYellow("[probe failed]")
				case result.Clean():
					line += " " + tui.ColorDim("[applies cleanly]")
				default:
					line += " " + tui.ColorRed("[conflicts]")
				}
				rctx.Splog.Info("%s", line)

				if result.Err == nil {
					for _, file := range result.Files {
						rctx.Splog.Info("    %s", tui.ColorRed(file))
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&noBadges, "no-badges", false, "Skip the conflict probe and list entries only")

	return cmd
}

// newBranchesCmd creates the branches command
func newBranchesCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "branches",
		Short: "Lists branches",
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.NewContext()
			if err != nil {
				return err
			}

			runner, err := rctx.Runner(cmd.Context())
			if err != nil {
				return err
			}

			branches, err := runner.ListBranches(cmd.Context())
			if err != nil {
				return err
			}

			for _, branch := range branches {
				if branch.IsRemote && !all {
					continue
				}

				marker := "  "
				name := branch.Name
				if branch.IsCurrent {
					marker = tui.ColorCyan("* ")
					name = tui.ColorCyan(name)
				}
				rctx.Splog.Info("%s%s %s", marker, name, tui.ColorDim(branch.LastCommitMessage))
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include remote branches")

	return cmd
}
