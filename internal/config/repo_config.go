// Package config provides repository configuration management,
// including reading and writing histedit configuration files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RepoConfig represents the repository configuration
type RepoConfig struct {
	BaseBranch   *string `json:"baseBranch,omitempty"`
	ConfirmAbort *bool   `json:"confirmAbort,omitempty"`
	ProbeOnPlan  *bool   `json:"probeOnPlan,omitempty"`
	StashBadges  *bool   `json:"stashBadges,omitempty"`
}

func configPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", ".histedit_config")
}

// GetRepoConfig reads the repository configuration
func GetRepoConfig(repoRoot string) (*RepoConfig, error) {
	data, err := os.ReadFile(configPath(repoRoot))
	if err != nil {
		// Config doesn't exist - return default
		return &RepoConfig{}, nil
	}

	var config RepoConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}

	return &config, nil
}

func writeRepoConfig(repoRoot string, config *RepoConfig) error {
	configJSON, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath(repoRoot), configJSON, 0600)
}

// GetBaseBranch returns the configured default base branch, or empty when
// unset so the caller can fall back to branch detection
func GetBaseBranch(repoRoot string) (string, error) {
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		return "", err
	}

	if config.BaseBranch != nil {
		return *config.BaseBranch, nil
	}

	return "", nil
}

// SetBaseBranch updates the default base branch in the config
func SetBaseBranch(repoRoot string, branchName string) error {
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		config = &RepoConfig{}
	}

	config.BaseBranch = &branchName
	return writeRepoConfig(repoRoot, config)
}

// GetConfirmAbort returns whether abort requires confirmation, true by default
func GetConfirmAbort(repoRoot string) (bool, error) {
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		return true, err
	}

	if config.ConfirmAbort != nil {
		return *config.ConfirmAbort, nil
	}

	return true, nil
}

// GetProbeOnPlan returns whether planning should run a pre-flight conflict
// probe of the stash list, false by default
func GetProbeOnPlan(repoRoot string) (bool, error) {
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		return false, err
	}

	if config.ProbeOnPlan != nil {
		return *config.ProbeOnPlan, nil
	}

	return false, nil
}

// GetStashBadges returns whether the stash listing should include conflict
// badges, true by default
func GetStashBadges(repoRoot string) (bool, error) {
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		return true, err
	}

	if config.StashBadges != nil {
		return *config.StashBadges, nil
	}

	return true, nil
}
