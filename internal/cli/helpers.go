package cli

import (
	"fmt"
	"strings"

	"histedit.dev/histedit/internal/engine"
	"histedit.dev/histedit/internal/runtime"
	"histedit.dev/histedit/internal/tui"
)

// renderState prints the current plan and status for re-rendering after
// every command
func renderState(rctx *runtime.Context, state engine.State) {
	splog := rctx.Splog

	splog.Info("Status: %s", state.Status)

	switch state.Status {
	case engine.StatusPausedConflict:
		splog.Warn("%s", state.ConflictMessage)
		for _, file := range state.ConflictingFiles {
			splog.Info("  %s", tui.ColorRed(file))
		}
		if state.StoppedCommit != "" {
			splog.Info("Stopped on %s", tui.ColorDim(state.StoppedCommit))
		}
		splog.Tip("Resolve the conflicts, stage the files, then run 'histedit continue'")
	case engine.StatusPausedEdit:
		if state.StoppedCommit != "" {
			splog.Info("Stopped on %s", tui.ColorDim(state.StoppedCommit))
		}
		splog.Tip("Amend the stopped commit, then run 'histedit continue'")
	case engine.StatusCompleted:
		splog.Info("Rebase complete. Run 'histedit plan' to start a new plan.")
	case engine.StatusAborted:
		splog.Info("Rebase aborted; the branch was restored. Run 'histedit plan' to start over.")
	}

	if state.Plan == nil {
		return
	}

	splog.Newline()
	splog.Info("Rebasing %s onto %s", state.Plan.TargetBranch, state.Plan.BaseBranch)
	for _, entry := range state.Plan.Entries() {
		line := fmt.Sprintf("  %-6s %s %s",
			tui.ColorDisposition(entry.Disposition),
			tui.ColorDim(entry.Commit.ShortHash),
			entry.Commit.Subject(),
		)
		if reword := entry.RewordMessage(); reword != "" {
			line += tui.ColorDim(" → " + firstLine(reword))
		}
		splog.Info("%s", line)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
