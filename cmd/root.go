// Package cmd holds the command line interface.
package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nnimab/Smart-vocabulary-book/internal/config"
	"github.com/nnimab/Smart-vocabulary-book/internal/database"
	"github.com/nnimab/Smart-vocabulary-book/internal/server"
	"github.com/nnimab/Smart-vocabulary-book/internal/service"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "vocabulary",
	Short:         "Smart vocabulary book with spaced repetition reviews",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
}

// app is what every command needs: configuration, a logger and the open database.
type app struct {
	cfg *config.Config
	log *logrus.Logger
	db  *database.DB
	svc server.Services
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database.DB())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.WithField("driver", cfg.Database.Driver).Info("database ready")

	opts := []service.Option{service.WithLogger(logger)}
	return &app{
		cfg: cfg,
		log: logger,
		db:  db,
		svc: server.Services{
			Users: service.NewUserService(db, opts...),
			Books: service.NewBookService(db, rand.New(rand.NewSource(time.Now().UnixNano())), opts...),
			Study: service.NewStudyService(db, opts...),
			Stats: service.NewStatsService(db, opts...),
		},
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.WithError(err).Warn("failed to close database")
	}
}
