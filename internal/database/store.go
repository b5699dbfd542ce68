// Package database provides the relation store that persists canonical daily reports.
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/covid19-reports/reportsync/db/migrations"

	// Register the postgres driver for database/sql
	_ "github.com/lib/pq"
	// Register the SQLite driver for database/sql
	_ "modernc.org/sqlite"
)

const (
	// DriverSQLite selects the embedded SQLite store.
	DriverSQLite = "sqlite"
	// DriverPostgres selects a PostgreSQL server.
	DriverPostgres = "postgres"
)

const sqliteTimeFormat = "_time_format=sqlite"

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Schema describes the table holding daily reports.
type Schema struct {
	Table   string
	Columns []string
}

// DailyReports is the schema created by the embedded migrations.
var DailyReports = Schema{
	Table: "daily_reports",
	Columns: []string{
		"region", "province", "city", "latitude", "longitude",
		"last_update", "active", "confirmed", "deaths", "recovered",
	},
}

// Options configures a Store.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Schema          Schema
}

// Store is a lazily opened relation store. The handle is created and migrated on the
// first operation and reused until Close.
type Store struct {
	opts   Options
	logger logrus.FieldLogger

	mu sync.Mutex
	db *sqlx.DB
}

// NewStore validates the options without touching the database.
func NewStore(opts Options, logger logrus.FieldLogger) (*Store, error) {
	switch opts.Driver {
	case "":
		opts.Driver = DriverSQLite
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if opts.DSN == "" {
		return nil, errors.New("database dsn is required")
	}
	if opts.Schema.Table == "" {
		opts.Schema = DailyReports
	}
	return &Store{opts: opts, logger: logger}, nil
}

// DB returns the open handle, opening and migrating it on first use.
func (s *Store) DB(ctx context.Context) (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	s.db = db
	return db, nil
}

// Close releases the handle if it was opened.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) open(ctx context.Context) (*sqlx.DB, error) {
	dsn := s.opts.DSN
	if s.opts.Driver == DriverSQLite {
		var err error
		dsn, err = sqliteDSN(dsn)
		if err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(s.opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w: %w", ErrConnectionFailure, err)
	}

	if s.opts.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else if s.opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(s.opts.MaxOpenConns)
	}
	if s.opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(s.opts.MaxIdleConns)
	}
	if s.opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(s.opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w: %w", ErrConnectionFailure, err)
	}

	if err := runMigrations(db, s.opts.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}

	if s.logger != nil {
		s.logger.WithField("driver", s.opts.Driver).Debug("database ready")
	}
	return db, nil
}

// sqliteDSN turns a plain path into a file: URI and creates its directory. Times are
// written in a sortable layout so day ranges compare correctly as text.
func sqliteDSN(path string) (string, error) {
	if path == ":memory:" {
		return "file::memory:?cache=shared&" + sqliteTimeFormat, nil
	}
	if strings.HasPrefix(path, "file:") {
		if strings.Contains(path, "_time_format=") {
			return path, nil
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + sqliteTimeFormat, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path: %w", err)
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&%s", filepath.ToSlash(absPath), sqliteTimeFormat), nil
}

func runMigrations(db *sqlx.DB, driverName string) error {
	var (
		driver migratedb.Driver
		err    error
	)
	switch driverName {
	case DriverPostgres:
		driver, err = migratepg.WithInstance(db.DB, &migratepg.Config{})
	default:
		driver, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to initialise migrate driver: %w", classify(err))
	}

	sourceDriver, err := iofs.New(migrations.Files, driverName)
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	defer func() {
		_ = sourceDriver.Close()
	}()

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, driverName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", classify(err))
	}

	return nil
}
