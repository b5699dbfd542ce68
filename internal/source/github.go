package source

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/sirupsen/logrus"
)

const (
	treeEntryBlob = "blob"
	treeEntryTree = "tree"
)

// GitHubOptions configures the GitHub API client.
type GitHubOptions struct {
	// Token is an optional access token. Anonymous clients get a much lower rate limit.
	Token string
	// BaseURL overrides the API root, for GitHub Enterprise or test servers.
	BaseURL    string
	HTTPClient *http.Client
}

// GitHubBrowser reads repositories through the GitHub REST API. Folders are listed through
// the Git Trees API, which is not subject to the 1,000 entry cap of the contents API, and
// file bodies are fetched one at a time through the Blobs API.
type GitHubBrowser struct {
	client *github.Client
	logger logrus.FieldLogger
}

// NewGitHubBrowser creates a GitHubBrowser.
func NewGitHubBrowser(opts GitHubOptions, logger logrus.FieldLogger) (*GitHubBrowser, error) {
	client := github.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", opts.BaseURL, err)
		}
		client.BaseURL = base
	}
	return &GitHubBrowser{client: client, logger: logger}, nil
}

func (b *GitHubBrowser) Repository(ctx context.Context, fullName string) (Repository, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository name %q (want owner/name)", fullName)
	}

	repo, _, err := b.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("%w: get repository %s: %w", ErrRemoteUnavailable, fullName, err)
	}

	return &githubRepository{
		client: b.client,
		logger: b.logger.WithField("repository", fullName),
		owner:  owner,
		name:   name,
		ref:    repo.GetDefaultBranch(),
	}, nil
}

type githubRepository struct {
	client *github.Client
	logger logrus.FieldLogger
	owner  string
	name   string
	ref    string
}

func (r *githubRepository) ListFolder(ctx context.Context, dir string) iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		tree, err := r.folderTree(ctx, dir)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, entry := range tree.Entries {
			if entry.GetType() != treeEntryBlob {
				continue
			}
			file := &githubFile{repo: r, name: entry.GetPath(), sha: entry.GetSHA()}
			if !yield(file, nil) {
				return
			}
		}
	}
}

// folderTree walks from the default branch down to dir, one tree per path segment.
func (r *githubRepository) folderTree(ctx context.Context, dir string) (*github.Tree, error) {
	sha := r.ref
	if sha == "" {
		sha = "HEAD"
	}

	tree, err := r.tree(ctx, sha)
	if err != nil {
		return nil, err
	}

	for _, segment := range strings.Split(strings.Trim(dir, "/"), "/") {
		if segment == "" {
			continue
		}
		next := ""
		for _, entry := range tree.Entries {
			if entry.GetType() == treeEntryTree && entry.GetPath() == segment {
				next = entry.GetSHA()
				break
			}
		}
		if next == "" {
			return nil, fmt.Errorf("%w: folder %s not found in %s/%s", ErrRemoteUnavailable, dir, r.owner, r.name)
		}
		if tree, err = r.tree(ctx, next); err != nil {
			return nil, err
		}
	}

	if tree.GetTruncated() {
		return nil, fmt.Errorf("%w: listing of %s was truncated", ErrRemoteUnavailable, dir)
	}
	r.logger.WithField("folder", dir).Debugf("listed %d entries", len(tree.Entries))
	return tree, nil
}

func (r *githubRepository) tree(ctx context.Context, sha string) (*github.Tree, error) {
	tree, _, err := r.client.Git.GetTree(ctx, r.owner, r.name, sha, false)
	if err != nil {
		return nil, fmt.Errorf("%w: get tree %s: %w", ErrRemoteUnavailable, sha, err)
	}
	return tree, nil
}

type githubFile struct {
	repo *githubRepository
	name string
	sha  string
}

func (f *githubFile) Name() string {
	return f.name
}

func (f *githubFile) Content(ctx context.Context) ([]byte, error) {
	content, _, err := f.repo.client.Git.GetBlobRaw(ctx, f.repo.owner, f.repo.name, f.sha)
	if err != nil {
		return nil, fmt.Errorf("%w: get blob %s (%s): %w", ErrRemoteUnavailable, f.name, f.sha, err)
	}
	return content, nil
}
