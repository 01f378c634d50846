// Package cmd implements the pbxray command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pbxtools/pbxray/internal/config"
	"github.com/pbxtools/pbxray/internal/logging"
	"github.com/pbxtools/pbxray/internal/store"
)

// cfg is loaded once before any command runs.
var cfg *config.Config

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "pbxray",
	Short: "PBX log analyzer backed by PostgreSQL",
	Long: `pbxray ingests PBX telephony logs into PostgreSQL and analyzes them.
It extracts call records, SIP traffic, registrations and system events
from raw log files, and serves reports over HTTP or as HTML and CSV.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig loads .env, the environment configuration and the logger.
// Runs before every command.
func initConfig() {
	// Overload overwrites existing env vars with .env values.
	if err := godotenv.Overload(); err == nil {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	c, err := config.Load()
	cobra.CheckErr(err)
	cfg = c

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
}

// openStore connects to the database and ensures the schema exists.
func openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Connect(ctx, store.Config{
		URL:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, err
	}
	if err := st.InitSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	slog.Debug("connected to database", "name", store.DatabaseName(cfg.Database.URL))
	return st, nil
}
