package source

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path"
)

// LocalBrowser serves repositories from a directory tree, such as a local clone of the data
// repository. Every full name resolves to the same root.
type LocalBrowser struct {
	root fs.FS
}

// NewLocalBrowser returns a Browser reading from the directory at root.
func NewLocalBrowser(root string) *LocalBrowser {
	return &LocalBrowser{root: os.DirFS(root)}
}

// NewFSBrowser returns a Browser reading from fsys.
func NewFSBrowser(fsys fs.FS) *LocalBrowser {
	return &LocalBrowser{root: fsys}
}

func (b *LocalBrowser) Repository(_ context.Context, fullName string) (Repository, error) {
	if _, err := fs.Stat(b.root, "."); err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrRemoteUnavailable, fullName, err)
	}
	return &localRepository{root: b.root}, nil
}

type localRepository struct {
	root fs.FS
}

// ListFolder yields regular files in lexical order.
func (r *localRepository) ListFolder(_ context.Context, dir string) iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		dir = cleanFolder(dir)
		entries, err := fs.ReadDir(r.root, dir)
		if err != nil {
			yield(nil, fmt.Errorf("%w: list %s: %w", ErrRemoteUnavailable, dir, err))
			return
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			if !yield(&localFile{root: r.root, path: path.Join(dir, entry.Name())}, nil) {
				return
			}
		}
	}
}

type localFile struct {
	root fs.FS
	path string
}

func (f *localFile) Name() string {
	return path.Base(f.path)
}

func (f *localFile) Content(_ context.Context) ([]byte, error) {
	content, err := fs.ReadFile(f.root, f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrRemoteUnavailable, f.path, err)
	}
	return content, nil
}

func cleanFolder(dir string) string {
	dir = path.Clean("/" + dir)
	if dir == "/" {
		return "."
	}
	return dir[1:]
}
