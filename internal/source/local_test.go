package source

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBrowserListsFolder(t *testing.T) {
	fsys := fstest.MapFS{
		"reports/01-22-2020.csv":  {Data: []byte("a,b\n")},
		"reports/README.md":       {Data: []byte("readme")},
		"reports/archive/old.csv": {Data: []byte("x")},
	}
	ctx := context.Background()

	repo, err := NewFSBrowser(fsys).Repository(ctx, "owner/name")
	require.NoError(t, err)

	var names []string
	for file, err := range repo.ListFolder(ctx, "/reports/") {
		require.NoError(t, err)
		names = append(names, file.Name())
	}
	assert.Equal(t, []string{"01-22-2020.csv", "README.md"}, names)
}

func TestLocalBrowserContent(t *testing.T) {
	fsys := fstest.MapFS{"reports/01-22-2020.csv": {Data: []byte("a,b\n")}}
	ctx := context.Background()

	repo, err := NewFSBrowser(fsys).Repository(ctx, "owner/name")
	require.NoError(t, err)

	for file, err := range repo.ListFolder(ctx, "reports") {
		require.NoError(t, err)
		content, err := file.Content(ctx)
		require.NoError(t, err)
		assert.Equal(t, "a,b\n", string(content))
	}
}

func TestLocalBrowserMissingFolder(t *testing.T) {
	ctx := context.Background()
	repo, err := NewLocalBrowser(t.TempDir()).Repository(ctx, "owner/name")
	require.NoError(t, err)

	for _, err := range repo.ListFolder(ctx, "missing") {
		assert.ErrorIs(t, err, ErrRemoteUnavailable)
	}
}
