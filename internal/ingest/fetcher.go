// Package ingest discovers daily report files that have not been persisted yet and yields
// their normalized content.
package ingest

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/covid19-reports/reportsync/internal/report"
	"github.com/covid19-reports/reportsync/internal/source"
)

const (
	// DefaultRepository is the repository publishing the daily reports.
	DefaultRepository = "CSSEGISandData/COVID-19"
	// DefaultFolder is the folder holding one CSV file per day.
	DefaultFolder = "csse_covid_19_data/csse_covid_19_daily_reports"
)

// Batch is the canonical content of one daily report file.
type Batch struct {
	FileName string
	Date     time.Time
	Records  []report.DailyRecord
}

// Options configures a Fetcher.
type Options struct {
	Repository string
	Folder     string
	// Cutoff, when non-nil, skips every file dated strictly before its day. A file dated
	// on the cutoff day itself is fetched again.
	Cutoff *time.Time
	// Chronological buffers the listing (names only) and yields files ordered by report
	// date instead of listing order.
	Chronological bool
}

// Fetcher turns the daily report folder of a repository into a sequence of batches.
type Fetcher struct {
	browser source.Browser
	logger  logrus.FieldLogger
	opts    Options
}

// NewFetcher creates a Fetcher. Repository and Folder default to the published daily
// report location; the cutoff is normalized to midnight UTC.
func NewFetcher(browser source.Browser, logger logrus.FieldLogger, opts Options) *Fetcher {
	if opts.Repository == "" {
		opts.Repository = DefaultRepository
	}
	if opts.Folder == "" {
		opts.Folder = DefaultFolder
	}
	if opts.Cutoff != nil {
		day := report.Day(*opts.Cutoff)
		opts.Cutoff = &day
	}
	return &Fetcher{browser: browser, logger: logger, opts: opts}
}

// Fetch lists the report folder and yields one batch per eligible file. Files whose
// name is not MM-DD-YYYY.csv are ignored. Content is retrieved only for files at or
// after the cutoff. The sequence ends at the first error; every call lists again.
func (f *Fetcher) Fetch(ctx context.Context) iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		repo, err := f.browser.Repository(ctx, f.opts.Repository)
		if err != nil {
			yield(Batch{}, err)
			return
		}

		listing := repo.ListFolder(ctx, f.opts.Folder)
		if f.opts.Chronological {
			listing = chronological(listing)
		}

		for file, err := range listing {
			if err != nil {
				yield(Batch{}, err)
				return
			}

			batch, ok, err := f.process(ctx, file)
			if err != nil {
				yield(Batch{}, err)
				return
			}
			if !ok {
				continue
			}
			if !yield(batch, nil) {
				return
			}
		}
	}
}

func (f *Fetcher) process(ctx context.Context, file source.File) (Batch, bool, error) {
	name := file.Name()
	if !report.IsDailyReportName(name) {
		f.logger.WithField("file", name).Debug("skipping non-report file")
		return Batch{}, false, nil
	}

	date, err := report.FileDate(name)
	if err != nil {
		return Batch{}, false, err
	}

	log := f.logger.WithField("file", name)
	if f.opts.Cutoff != nil && date.Before(*f.opts.Cutoff) {
		log.Debug("already persisted, skipping")
		return Batch{}, false, nil
	}

	log.Debug("reading daily report")
	content, err := file.Content(ctx)
	if err != nil {
		return Batch{}, false, err
	}

	records, err := report.Decode(content)
	if err != nil {
		return Batch{}, false, fmt.Errorf("%s: %w", name, err)
	}

	return Batch{FileName: name, Date: date, Records: records}, true, nil
}

// chronological drains a listing and re-yields it ordered by report date. Names that are
// not daily reports keep their relative order at the front; invalid dates sort first so
// the malformed file still surfaces as an error before any batch.
func chronological(listing iter.Seq2[source.File, error]) iter.Seq2[source.File, error] {
	return func(yield func(source.File, error) bool) {
		var files []source.File
		for file, err := range listing {
			if err != nil {
				yield(nil, err)
				return
			}
			files = append(files, file)
		}

		sort.SliceStable(files, func(i, j int) bool {
			return sortKey(files[i]).Before(sortKey(files[j]))
		})

		for _, file := range files {
			if !yield(file, nil) {
				return
			}
		}
	}
}

func sortKey(file source.File) time.Time {
	if !report.IsDailyReportName(file.Name()) {
		return time.Time{}
	}
	date, err := report.FileDate(file.Name())
	if err != nil {
		return time.Time{}
	}
	return date
}
