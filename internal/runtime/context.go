// Package runtime provides a context type that holds the session manager and
// logger for use throughout the application. This avoids passing multiple
// parameters.
package runtime

import (
	"context"
	"fmt"

	"histedit.dev/histedit/internal/engine"
	"histedit.dev/histedit/internal/git"
	"histedit.dev/histedit/internal/tui"
)

// Context provides access to the session manager and output for commands
type Context struct {
	Sessions *engine.Manager
	Splog    *tui.Splog
	RepoRoot string
}

// sharedManager is process-wide so every command sees the same sessions
var sharedManager = engine.NewManager()

// NewContext creates a context rooted at the repository containing the
// current working directory
func NewContext() (*Context, error) {
	repoRoot, err := git.ResolveRepoRoot(".")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	splog, err := tui.NewSplogWithLogFile(tui.GetLogFilePath())
	if err != nil {
		splog = tui.NewSplog()
	}

	return &Context{
		Sessions: sharedManager,
		Splog:    splog,
		RepoRoot: repoRoot,
	}, nil
}

// Runner returns the backend for the context's repository
func (c *Context) Runner(ctx context.Context) (git.Runner, error) {
	return c.Sessions.Runner(ctx, c.RepoRoot)
}
