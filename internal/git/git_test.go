package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		t.Skipf("Skipping test: git %v failed: %v", args, err)
	}
}

func TestGetRevision_NotGitRepo(t *testing.T) {
	tmpDir := t.TempDir()

	rev, err := GetRevision(tmpDir)
	if err != nil {
		t.Fatalf("GetRevision returned error: %v", err)
	}

	if rev.IsGitRepo {
		t.Error("Expected IsGitRepo to be false for non-git directory")
	}
}

func TestGetRevision_Clone(t *testing.T) {
	tmpDir := t.TempDir()

	gitCmd(t, tmpDir, "init")
	gitCmd(t, tmpDir, "config", "user.email", "test@example.com")
	gitCmd(t, tmpDir, "config", "user.name", "Test User")
	gitCmd(t, tmpDir, "symbolic-ref", "HEAD", "refs/heads/master")

	folder := filepath.Join(tmpDir, "csse_covid_19_data", "csse_covid_19_daily_reports")
	if err := os.MkdirAll(folder, 0o750); err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}
	if err := os.WriteFile(filepath.Join(folder, "01-22-2020.csv"), []byte("Country/Region\n"), 0o600); err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}

	gitCmd(t, tmpDir, "add", ".")
	gitCmd(t, tmpDir, "commit", "-m", "Initial commit")

	rev, err := GetRevision(folder)
	if err != nil {
		t.Fatalf("GetRevision returned error: %v", err)
	}

	if !rev.IsGitRepo {
		t.Fatal("Expected IsGitRepo to be true")
	}
	if rev.Branch != "master" {
		t.Errorf("Expected branch master, got %q", rev.Branch)
	}
	if len(rev.Commit) != 40 {
		t.Errorf("Expected a full commit hash, got %q", rev.Commit)
	}
	if len(rev.ShortCommit()) != 12 {
		t.Errorf("Expected a 12 character short commit, got %q", rev.ShortCommit())
	}
	if rev.Dirty {
		t.Error("Expected a clean work tree")
	}

	if err := os.WriteFile(filepath.Join(folder, "01-23-2020.csv"), []byte("Country/Region\n"), 0o600); err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}

	rev, err = GetRevision(folder)
	if err != nil {
		t.Fatalf("GetRevision returned error: %v", err)
	}
	if !rev.Dirty {
		t.Error("Expected untracked report to mark the work tree dirty")
	}
}
