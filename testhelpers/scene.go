package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
)

// Scene represents a test scene with a temporary directory and Git repository.
type Scene struct {
	Dir    string
	Repo   *GitRepo
	oldDir string
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a new test scene with a temporary directory and Git repository.
// It automatically handles cleanup using t.Cleanup().
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	tmpDir, err := os.MkdirTemp("", "histedit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	repo, err := NewGitRepo(tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{
		Dir:    tmpDir,
		Repo:   repo,
		oldDir: oldDir,
	}

	if err := os.Chdir(tmpDir); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to change directory: %v", err)
	}

	if err := scene.writeDefaultConfigs(); err != nil {
		os.Chdir(oldDir)
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to write config files: %v", err)
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			os.Chdir(oldDir)
			os.RemoveAll(tmpDir)
			t.Fatalf("Setup failed: %v", err)
		}
	}

	t.Cleanup(func() {
		os.Chdir(oldDir)
		if os.Getenv("DEBUG") == "" {
			os.RemoveAll(tmpDir)
		}
	})

	return scene
}

// NewSceneParallel creates a scene without changing the working directory,
// making it safe for tests that call t.Parallel(). Callers must address the
// repository through scene.Dir.
func NewSceneParallel(t *testing.T, setup SceneSetup) *Scene {
	tmpDir, err := os.MkdirTemp("", "histedit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	repo, err := NewGitRepo(tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{
		Dir:  tmpDir,
		Repo: repo,
	}

	if err := scene.writeDefaultConfigs(); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to write config files: %v", err)
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			os.RemoveAll(tmpDir)
			t.Fatalf("Setup failed: %v", err)
		}
	}

	t.Cleanup(func() {
		if os.Getenv("DEBUG") == "" {
			os.RemoveAll(tmpDir)
		}
	})

	return scene
}

// writeDefaultConfigs writes the default histedit configuration files.
func (s *Scene) writeDefaultConfigs() error {
	repoConfigPath := filepath.Join(s.Dir, ".git", ".histedit_config")
	repoConfig := `{
  "baseBranch": "main",
  "confirmAbort": false
}
`
	if err := os.WriteFile(repoConfigPath, []byte(repoConfig), 0644); err != nil {
		return err
	}

	// Interactive prompts would hang tests
	os.Setenv("HISTEDIT_TEST_NO_INTERACTIVE", "1")

	return nil
}

// BasicSceneSetup is a setup function that creates a basic scene with a single commit.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}
