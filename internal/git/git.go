// Package git inspects local clones of the data repository.
package git

import (
	"os/exec"
	"strings"
)

// Revision identifies the checked-out state of a clone.
type Revision struct {
	IsGitRepo bool
	Root      string
	Branch    string
	Commit    string
	// Dirty reports uncommitted changes under Root.
	Dirty bool
}

// GetRevision describes the clone containing dir. A directory outside any git work tree
// yields a Revision with IsGitRepo=false and no error, as does a missing git binary.
func GetRevision(dir string) (*Revision, error) {
	root, err := runGitCommand(dir, "rev-parse", "--show-toplevel")
	if err != nil || root == "" {
		//nolint:nilerr // not a repository is a valid answer
		return &Revision{IsGitRepo: false}, nil
	}

	commit, err := runGitCommand(dir, "rev-parse", "HEAD")
	if err != nil {
		// A fresh repository has no HEAD commit yet.
		commit = ""
	}

	branch, err := runGitCommand(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}

	status, err := runGitCommand(dir, "status", "--porcelain")
	if err != nil {
		status = ""
	}

	return &Revision{
		IsGitRepo: true,
		Root:      root,
		Branch:    branch,
		Commit:    commit,
		Dirty:     status != "",
	}, nil
}

// ShortCommit returns the first 12 characters of the commit hash.
func (r *Revision) ShortCommit() string {
	if len(r.Commit) > 12 {
		return r.Commit[:12]
	}
	return r.Commit
}

// runGitCommand executes a git command and returns the trimmed output
func runGitCommand(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	// Suppress stderr to avoid noise when not in a git repository
	cmd.Stderr = nil

	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(output)), nil
}
