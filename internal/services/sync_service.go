// Package services implements the synchronization of daily reports into the relation store.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/covid19-reports/reportsync/internal/ingest"
	"github.com/covid19-reports/reportsync/internal/report"
	"github.com/covid19-reports/reportsync/internal/source"
)

// ReportStore is the part of the relation store the sync needs.
type ReportStore interface {
	MaxLastUpdate(ctx context.Context) (*time.Time, error)
	DeleteDay(ctx context.Context, day time.Time) (int64, error)
	Insert(ctx context.Context, records []report.DailyRecord) error
	CountByDay(ctx context.Context, day time.Time) (int64, error)
}

// SyncOptions selects where daily reports are read from.
type SyncOptions struct {
	Repository    string
	Folder        string
	Chronological bool
}

// FileResult describes one persisted daily report file.
type FileResult struct {
	Name string    `json:"file"`
	Date time.Time `json:"date"`
	Rows int       `json:"rows"`
}

// SyncResult summarizes a completed run.
type SyncResult struct {
	RunID string `json:"run_id"`
	// Checkpoint is the checkpoint found before the run, nil for a full sync.
	Checkpoint *time.Time `json:"checkpoint,omitempty"`
	// Deleted counts rows of the checkpoint day removed before refetching it.
	Deleted       int64        `json:"deleted"`
	Files         []FileResult `json:"files"`
	NewCheckpoint *time.Time   `json:"new_checkpoint,omitempty"`
	// CheckpointRows counts the stored rows of the NewCheckpoint day.
	CheckpointRows int64 `json:"checkpoint_rows"`
}

// Rows returns the number of inserted rows.
func (r *SyncResult) Rows() int {
	total := 0
	for _, f := range r.Files {
		total += f.Rows
	}
	return total
}

// SyncService copies daily reports that are not persisted yet into the store.
type SyncService struct {
	store   ReportStore
	browser source.Browser
	logger  logrus.FieldLogger
	opts    SyncOptions
}

// NewSyncService creates a new SyncService.
func NewSyncService(store ReportStore, browser source.Browser, logger logrus.FieldLogger, opts SyncOptions) *SyncService {
	return &SyncService{
		store:   store,
		browser: browser,
		logger:  logger,
		opts:    opts,
	}
}

// Checkpoint returns the latest persisted last_update, or nil when nothing is stored.
func (s *SyncService) Checkpoint(ctx context.Context) (*time.Time, error) {
	checkpoint, err := s.store.MaxLastUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	return checkpoint, nil
}

// Sync deletes the rows of the checkpoint day, then fetches every report from that day on
// and inserts one file at a time in the order they are produced. The first error stops
// the run; files inserted before it stay persisted.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{RunID: uuid.NewString(), Files: []FileResult{}}
	log := s.logger.WithField("run_id", result.RunID)

	checkpoint, err := s.Checkpoint(ctx)
	if err != nil {
		return nil, err
	}
	result.Checkpoint = checkpoint

	if checkpoint != nil {
		day := report.Day(*checkpoint)
		deleted, err := s.store.DeleteDay(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("failed to delete reports of %s: %w", day.Format(time.DateOnly), err)
		}
		result.Deleted = deleted
		log.WithFields(logrus.Fields{
			"checkpoint": checkpoint.Format(time.RFC3339),
			"deleted":    deleted,
		}).Info("resuming from checkpoint")
	} else {
		log.Info("no checkpoint, running full sync")
	}

	fetcher := ingest.NewFetcher(s.browser, log, ingest.Options{
		Repository:    s.opts.Repository,
		Folder:        s.opts.Folder,
		Cutoff:        checkpoint,
		Chronological: s.opts.Chronological,
	})

	for batch, err := range fetcher.Fetch(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to fetch reports: %w", err)
		}
		if err := s.store.Insert(ctx, batch.Records); err != nil {
			return nil, fmt.Errorf("failed to persist %s: %w", batch.FileName, err)
		}
		result.Files = append(result.Files, FileResult{
			Name: batch.FileName,
			Date: batch.Date,
			Rows: len(batch.Records),
		})
		log.WithFields(logrus.Fields{
			"file": batch.FileName,
			"rows": len(batch.Records),
		}).Info("persisted daily report")
	}

	newCheckpoint, err := s.Checkpoint(ctx)
	if err != nil {
		return nil, err
	}
	result.NewCheckpoint = newCheckpoint

	if newCheckpoint != nil {
		rows, err := s.store.CountByDay(ctx, report.Day(*newCheckpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to count reports of checkpoint day: %w", err)
		}
		result.CheckpointRows = rows
	}

	log.WithFields(logrus.Fields{
		"files": len(result.Files),
		"rows":  result.Rows(),
	}).Info("sync finished")
	return result, nil
}
