package git

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// ForgeClient answers repository questions that only the hosting forge knows,
// such as the default branch when origin/HEAD is unset locally.
type ForgeClient interface {
	DefaultBranch(ctx context.Context) (string, error)
}

// gitHubForge implements ForgeClient against the GitHub API
type gitHubForge struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubForge creates a ForgeClient for the given origin remote URL.
// Returns an error when no token is configured or the URL is not a GitHub
// remote; callers treat the forge as optional.
func NewGitHubForge(ctx context.Context, remoteURL string) (ForgeClient, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("no GitHub token configured")
	}

	owner, repo, err := parseGitHubRemote(remoteURL)
	if err != nil {
		return nil, err
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	return &gitHubForge{
		client: client,
		owner:  owner,
		repo:   repo,
	}, nil
}

// DefaultBranch returns the repository's default branch from the API
func (f *gitHubForge) DefaultBranch(ctx context.Context) (string, error) {
	repo, _, err := f.client.Repositories.Get(ctx, f.owner, f.repo)
	if err != nil {
		return "", fmt.Errorf("failed to get repository info: %w", err)
	}
	return repo.GetDefaultBranch(), nil
}

// parseGitHubRemote extracts owner and repo from an https or ssh remote URL
func parseGitHubRemote(remoteURL string) (owner, repo string, err error) {
	url := strings.TrimSuffix(strings.TrimSpace(remoteURL), ".git")

	var path string
	switch {
	case strings.HasPrefix(url, "git@github.com:"):
		path = strings.TrimPrefix(url, "git@github.com:")
	case strings.HasPrefix(url, "https://github.com/"):
		path = strings.TrimPrefix(url, "https://github.com/")
	case strings.HasPrefix(url, "ssh://git@github.com/"):
		path = strings.TrimPrefix(url, "ssh://git@github.com/")
	default:
		return "", "", fmt.Errorf("not a GitHub remote: %s", remoteURL)
	}

	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("unrecognized GitHub remote path: %s", path)
	}

	return parts[0], parts[1], nil
}
