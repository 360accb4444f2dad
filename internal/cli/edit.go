package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"histedit.dev/histedit/internal/engine"
	"histedit.dev/histedit/internal/runtime"
	"histedit.dev/histedit/internal/tui"
)

// newEditCmd creates the edit command
func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Opens an interactive editor for the plan",
		Long: `Opens an interactive editor for the plan. Navigate with arrow keys,
set dispositions with p/r/s/f/d/e, confirm with Enter.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !tui.IsInteractive() {
				return fmt.Errorf("'histedit edit' requires a terminal; use 'histedit set' instead")
			}

			rctx, err := runtime.NewContext()
			if err != nil {
				return err
			}

			state, err := rctx.Sessions.RebaseState(cmd.Context(), rctx.RepoRoot)
			if err != nil {
				return err
			}
			if state.Status != engine.StatusPlanning || state.Plan == nil {
				return fmt.Errorf("no plan to edit; run 'histedit plan' first")
			}

			entries := state.Plan.Entries()
			rows := make([]tui.PlanRow, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, tui.PlanRow{
					Hash:        entry.Commit.Hash,
					ShortHash:   entry.Commit.ShortHash,
					Subject:     entry.Commit.Subject(),
					Disposition: entry.Disposition,
					Message:     entry.RewordMessage(),
				})
			}

			edited, err := tui.RunPlanEditor(rows)
			if err != nil {
				return err
			}

			for i, row := range edited {
				if row.Disposition == entries[i].Disposition && row.Message == entries[i].RewordMessage() {
					continue
				}
				state, err = rctx.Sessions.ChangeDisposition(cmd.Context(), rctx.RepoRoot, row.Hash, row.Disposition, row.Message)
				if err != nil {
					return err
				}
			}

			renderState(rctx, state)
			return nil
		},
	}

	return cmd
}
