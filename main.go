package main

import (
	"fmt"
	"os"

	"github.com/FlorianRuen/repo-dashboard/config"
	"github.com/FlorianRuen/repo-dashboard/logger"
	"github.com/FlorianRuen/repo-dashboard/service"
	"github.com/FlorianRuen/repo-dashboard/store"
	"github.com/FlorianRuen/repo-dashboard/tokenstore"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// set at build time with -ldflags "-X main.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "repo-dashboard",
	Short:         "Browse, filter and inspect the Github repositories of a user",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Long = titleStyle.Render("repo-dashboard") + " " + dimStyle.Render(version) + "\n" +
		"Lists the repositories of a Github user, filters and sorts them, and loads the detail of one repository."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}

// app is everything a command needs to act on the dashboard
type app struct {
	config    *config.Config
	dashboard service.DashboardService
	tokens    *tokenstore.Bolt
}

// setup load the configuration, configure logs and open the token database
// one-shot commands only log warnings and errors, on stderr
func setup(quiet bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("unable to load configuration: %w", err)
	}

	if quiet {
		logger.SetupQuiet(*cfg, os.Stderr)
	} else {
		logger.Setup(*cfg)
	}

	tokens, err := tokenstore.Open(cfg.Storage.TokenDatabasePath)
	if err != nil {
		return nil, fmt.Errorf("unable to open token database: %w", err)
	}

	log.WithField("path", cfg.Storage.TokenDatabasePath).Debug("token database opened")

	return &app{
		config:    cfg,
		dashboard: service.NewDashboardService(*cfg, store.New(), tokens, service.NewGithubServiceFactory(*cfg)),
		tokens:    tokens,
	}, nil
}

func (a *app) Close() {
	if err := a.tokens.Close(); err != nil {
		log.WithError(err).Error("unable to close token database")
	}
}
