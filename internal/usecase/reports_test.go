package usecase

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covid19-reports/reportsync/internal/config"
	"github.com/covid19-reports/reportsync/internal/source"
)

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewBrowserPrefersLocalDir(t *testing.T) {
	browser, err := NewBrowser(config.SourceConfig{LocalDir: t.TempDir()}, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &source.LocalBrowser{}, browser)

	browser, err = NewBrowser(config.SourceConfig{}, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &source.GitHubBrowser{}, browser)
}

func TestReportsSyncFromLocalClone(t *testing.T) {
	clone := t.TempDir()
	folder := filepath.Join(clone, "daily")
	require.NoError(t, os.MkdirAll(folder, 0o750))
	content := "Province/State,Country/Region,Last Update,Confirmed,Deaths,Recovered\n" +
		"Anhui,Mainland China,1/22/2020 17:00,1,,\n"
	require.NoError(t, os.WriteFile(filepath.Join(folder, "01-22-2020.csv"), []byte(content), 0o600))

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "reports.db")},
		Source:   config.SourceConfig{LocalDir: clone, Folder: "daily"},
	}

	uc, err := NewReports(cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, uc.Close()) })

	ctx := context.Background()
	checkpoint, err := uc.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Nil(t, checkpoint)

	result, err := uc.Sync(ctx)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, 1, result.Files[0].Rows)

	checkpoint, err = uc.Checkpoint(ctx)
	require.NoError(t, err)
	require.NotNil(t, checkpoint)
	assert.Equal(t, time.Date(2020, 1, 22, 17, 0, 0, 0, time.UTC), *checkpoint)
}

func TestNewReportsRejectsUnknownDriver(t *testing.T) {
	_, err := NewReports(&config.Config{Database: config.DatabaseConfig{Driver: "mysql", DSN: "x"}}, quietLogger())
	assert.Error(t, err)
}
