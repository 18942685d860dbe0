package main

import (
	"context"
	"fmt"
	"os"

	"LTSLab/internal/calc/check"
	"LTSLab/internal/calc/gas"
	"LTSLab/internal/config"
	"LTSLab/internal/logging"
	"LTSLab/internal/repo"

	"github.com/ansel1/merry"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configFile string
	historyDB  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "labcli",
	Short: "LTS plant laboratory calculations",
	Long: `labcli - LTS gas plant laboratory tool

Computes natural gas energy parameters from a chromatograph composition,
checks glycol, water and gasoline analyses against the configured ranges,
and issues PDF reports recorded in the analysis history.

Configuration comes from the embedded lab.yaml unless --config or
LAB_CONFIG names another file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logLevel)
	},
}

// errNonCompliant makes the process exit with status 2 after the result
// has been printed.
var errNonCompliant = merry.New("non-compliant result")

// Execute runs the root command. Exit status is 1 on error and 2 when a
// check is non-compliant.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if merry.Is(err, errNonCompliant) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", os.Getenv("LAB_CONFIG"), "Laboratory configuration YAML")
	rootCmd.PersistentFlags().StringVar(&historyDB, "db", envOr("HISTORY_DB", "ltslab.sqlite"), "SQLite history file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "WRN"), "Log level (DBG, INF, WRN, ERR)")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadConfig() (*config.Config, error) {
	return config.Load(configFile)
}

func loadServices() (*config.Config, *gas.Service, *check.Evaluator, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, gas.NewService(cfg), check.NewEvaluator(cfg), nil
}

func openHistory(ctx context.Context) (*repo.SqliteRepository, func() error, error) {
	db, err := repo.OpenSqlite(historyDB)
	if err != nil {
		return nil, nil, err
	}
	r := repo.NewSqliteRepository(db)
	if err := r.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return r, db.Close, nil
}
