// Package usecase assembles the relation store, the report source and the sync service
// from configuration for the CLI and MCP entry points.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/covid19-reports/reportsync/internal/config"
	"github.com/covid19-reports/reportsync/internal/database"
	"github.com/covid19-reports/reportsync/internal/git"
	"github.com/covid19-reports/reportsync/internal/services"
	"github.com/covid19-reports/reportsync/internal/source"
)

type Reports struct {
	store   *database.Store
	service *services.SyncService
}

// NewReports builds the use case. The database is not opened until the first operation.
func NewReports(cfg *config.Config, logger logrus.FieldLogger) (*Reports, error) {
	store, err := database.NewStore(database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	browser, err := NewBrowser(cfg.Source, logger)
	if err != nil {
		return nil, err
	}

	service := services.NewSyncService(store, browser, logger, services.SyncOptions{
		Repository:    cfg.Source.Repository,
		Folder:        cfg.Source.Folder,
		Chronological: cfg.Source.Chronological,
	})

	return &Reports{store: store, service: service}, nil
}

// NewBrowser reads from a local clone when one is configured and from GitHub otherwise.
func NewBrowser(cfg config.SourceConfig, logger logrus.FieldLogger) (source.Browser, error) {
	if cfg.LocalDir != "" {
		log := logger.WithField("dir", cfg.LocalDir)
		if rev, err := git.GetRevision(cfg.LocalDir); err == nil && rev.IsGitRepo {
			log = log.WithFields(logrus.Fields{
				"branch": rev.Branch,
				"commit": rev.ShortCommit(),
				"dirty":  rev.Dirty,
			})
		}
		log.Info("reading reports from local clone")
		return source.NewLocalBrowser(cfg.LocalDir), nil
	}

	browser, err := source.NewGitHubBrowser(source.GitHubOptions{
		Token:   cfg.Token,
		BaseURL: cfg.BaseURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return browser, nil
}

func (u *Reports) Sync(ctx context.Context) (*services.SyncResult, error) {
	return u.service.Sync(ctx)
}

func (u *Reports) Checkpoint(ctx context.Context) (*time.Time, error) {
	return u.service.Checkpoint(ctx)
}

// Close releases the database handle.
func (u *Reports) Close() error {
	return u.store.Close()
}
