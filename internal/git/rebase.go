package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Disposition is the per-commit action applied when the plan executes
type Disposition string

const (
	DispositionPick   Disposition = "pick"
	DispositionReword Disposition = "reword"
	DispositionSquash Disposition = "squash"
	DispositionFixup  Disposition = "fixup"
	DispositionDrop   Disposition = "drop"
	DispositionEdit   Disposition = "edit"
)

// Valid returns true if the disposition is recognized
func (d Disposition) Valid() bool {
	switch d {
	case DispositionPick, DispositionReword, DispositionSquash,
		DispositionFixup, DispositionDrop, DispositionEdit:
		return true
	default:
		return false
	}
}

// ParseDisposition parses a disposition name, accepting single-letter abbreviations
func ParseDisposition(s string) (Disposition, error) {
	switch strings.ToLower(s) {
	case "p", "pick":
		return DispositionPick, nil
	case "r", "reword":
		return DispositionReword, nil
	case "s", "squash":
		return DispositionSquash, nil
	case "f", "fixup":
		return DispositionFixup, nil
	case "d", "drop":
		return DispositionDrop, nil
	case "e", "edit":
		return DispositionEdit, nil
	default:
		return "", fmt.Errorf("unknown disposition: %q", s)
	}
}

// RebaseInstruction is one step of a multi-step rebase, in execution order
// (oldest commit first).
type RebaseInstruction struct {
	CommitHash  string
	Disposition Disposition
	// Message replaces the commit message for reword instructions
	Message string
}

// buildTodoFile renders instructions as a git rebase todo file.
// Reword instructions with a known message become a pick followed by an exec
// that amends the commit, so the whole sequence runs without an editor.
func buildTodoFile(instructions []RebaseInstruction) string {
	var sb strings.Builder

	for _, inst := range instructions {
		switch inst.Disposition {
		case DispositionReword:
			fmt.Fprintf(&sb, "pick %s\n", inst.CommitHash)
			fmt.Fprintf(&sb, "exec git commit --amend --no-edit -m %s\n", shellQuote(inst.Message))
		default:
			fmt.Fprintf(&sb, "%s %s\n", inst.Disposition, inst.CommitHash)
		}
	}

	return sb.String()
}

// shellQuote single-quotes s for use in a rebase exec line
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// StartRebase starts a multi-step rebase of HEAD onto base following the
// ordered instruction list. The generated todo file is injected through
// GIT_SEQUENCE_EDITOR so git never opens an interactive editor. A conflict or
// an edit stop leaves the rebase in progress; callers must re-query
// IsRebaseInProgress and GetUnmergedFiles rather than trusting the returned
// error alone.
func (a *adapter) StartRebase(ctx context.Context, base string, instructions []RebaseInstruction) error {
	todo := buildTodoFile(instructions)

	tmpFile, err := os.CreateTemp("", "histedit-todo-*")
	if err != nil {
		return fmt.Errorf("failed to create todo file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.WriteString(todo); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write todo file: %w", err)
	}
	tmpFile.Close()

	// Git invokes the sequence editor synchronously with the todo path as the
	// last argument, so `cp <tmpPath>` replaces the generated todo wholesale.
	env := []string{
		"GIT_SEQUENCE_EDITOR=cp " + shellQuote(tmpPath),
		"GIT_EDITOR=true",
	}

	_, err = a.runner.RunWithEnv(ctx, env,
		"-c", "advice.mergeConflict=false",
		"rebase", "--interactive", base,
	)
	return err
}

// ContinueRebase continues an in-progress rebase
func (a *adapter) ContinueRebase(ctx context.Context) error {
	_, err := a.runner.RunWithEnv(ctx,
		[]string{"GIT_EDITOR=true"},
		"-c", "core.editor=true", "rebase", "--continue",
	)
	return err
}

// AbortRebase aborts an in-progress rebase
func (a *adapter) AbortRebase(ctx context.Context) error {
	_, err := a.runner.Run(ctx, "rebase", "--abort")
	if err != nil {
		return fmt.Errorf("rebase abort failed: %w", err)
	}
	return nil
}

// IsRebaseInProgress checks if a rebase is currently in progress.
// Checks for .git/rebase-merge or .git/rebase-apply directories, which is
// more reliable than REBASE_HEAD (that ref can persist after a rebase ends).
func (a *adapter) IsRebaseInProgress(ctx context.Context) bool {
	gitDir, err := a.runner.Run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return false
	}

	if _, err := os.Stat(filepath.Join(gitDir, "rebase-merge")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(gitDir, "rebase-apply")); err == nil {
		return true
	}
	return false
}

// GetUnmergedFiles returns the paths with unresolved merge conflicts
func (a *adapter) GetUnmergedFiles(ctx context.Context) ([]string, error) {
	files, err := a.runner.RunLines(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, fmt.Errorf("failed to list unmerged files: %w", err)
	}
	return files, nil
}

// GetRebaseHead returns the commit currently being replayed, if a rebase is
// paused on one.
func (a *adapter) GetRebaseHead(ctx context.Context) (string, error) {
	sha, err := a.runner.Run(ctx, "rev-parse", "--verify", "REBASE_HEAD")
	if err != nil {
		return "", fmt.Errorf("rebase head not found: %w", err)
	}
	return sha, nil
}
