package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/covid19-reports/reportsync/internal/config"
	"github.com/covid19-reports/reportsync/internal/logging"
	"github.com/covid19-reports/reportsync/internal/usecase"
)

// app carries the configuration shared by every subcommand.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:          "reportsync",
		Short:        "reportsync - COVID-19 daily report ingestion",
		Long:         "reportsync copies the CSSE COVID-19 daily report CSV files into a relational database, resuming from the last stored day.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default: ./reportsync.yaml or $XDG_CONFIG_HOME/reportsync/reportsync.yaml)")
	flags.String("db-driver", "sqlite", "Database driver: sqlite or postgres")
	flags.String("db-dsn", "", "Database DSN or SQLite file path")
	flags.String("log-level", "info", "Log level")
	flags.String("log-format", "text", "Log format: text or json")

	a.bind("database.driver", flags.Lookup("db-driver"))
	a.bind("database.dsn", flags.Lookup("db-dsn"))
	a.bind("log.level", flags.Lookup("log-level"))
	a.bind("log.format", flags.Lookup("log-format"))

	cmd.AddCommand(newSyncCmd(a))
	cmd.AddCommand(newCheckpointCmd(a))
	cmd.AddCommand(newMCPCmd(a))

	return cmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) reports() (*usecase.Reports, error) {
	return usecase.NewReports(a.cfg, a.logger)
}
