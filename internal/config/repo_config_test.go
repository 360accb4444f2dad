package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"histedit.dev/histedit/testhelpers"
)

func TestGetBaseBranch(t *testing.T) {
	t.Parallel()

	t.Run("returns empty when config does not exist", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, nil)
		require.NoError(t, os.Remove(filepath.Join(scene.Dir, ".git", ".histedit_config")))

		base, err := GetBaseBranch(scene.Dir)
		require.NoError(t, err)
		require.Empty(t, base)
	})

	t.Run("returns the configured base branch", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, nil)

		require.NoError(t, SetBaseBranch(scene.Dir, "develop"))
		base, err := GetBaseBranch(scene.Dir)
		require.NoError(t, err)
		require.Equal(t, "develop", base)
	})

	t.Run("fails on malformed config", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, nil)

		configPath := filepath.Join(scene.Dir, ".git", ".histedit_config")
		require.NoError(t, os.WriteFile(configPath, []byte("not json"), 0600))

		_, err := GetBaseBranch(scene.Dir)
		require.Error(t, err)
	})
}

func TestSetBaseBranchPreservesOtherFields(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, nil)

	// The scene's default config sets confirmAbort to false
	require.NoError(t, SetBaseBranch(scene.Dir, "develop"))

	confirm, err := GetConfirmAbort(scene.Dir)
	require.NoError(t, err)
	require.False(t, confirm)

	base, err := GetBaseBranch(scene.Dir)
	require.NoError(t, err)
	require.Equal(t, "develop", base)
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, nil)
	require.NoError(t, os.Remove(filepath.Join(scene.Dir, ".git", ".histedit_config")))

	confirm, err := GetConfirmAbort(scene.Dir)
	require.NoError(t, err)
	require.True(t, confirm)

	probeOnPlan, err := GetProbeOnPlan(scene.Dir)
	require.NoError(t, err)
	require.False(t, probeOnPlan)

	badges, err := GetStashBadges(scene.Dir)
	require.NoError(t, err)
	require.True(t, badges)
}
