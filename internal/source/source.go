// Package source provides read-only access to the repository that publishes the daily
// report files.
package source

import (
	"context"
	"errors"
	"iter"
)

// ErrRemoteUnavailable indicates the repository could not be listed or a file body could
// not be retrieved.
var ErrRemoteUnavailable = errors.New("source: remote unavailable")

// File describes one entry of a folder listing. Content is retrieved only when asked for.
type File interface {
	Name() string
	Content(ctx context.Context) ([]byte, error)
}

// Repository is a handle to one repository.
type Repository interface {
	// ListFolder lazily yields the files directly inside path, in the order the backend
	// lists them. The sequence stops after the first error.
	ListFolder(ctx context.Context, path string) iter.Seq2[File, error]
}

// Browser opens repositories by full name ("owner/name").
type Browser interface {
	Repository(ctx context.Context, fullName string) (Repository, error)
}
