package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FlorianRuen/repo-dashboard/controller"
	"github.com/FlorianRuen/repo-dashboard/model"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var servePort string

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port, overrides API.ListenPort")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if servePort != "" {
			a.config.API.ListenPort = servePort
		}

		// reopen the previous session when a token is configured or was remembered
		if err := a.dashboard.RestoreSession(cmd.Context()); err != nil {
			if errors.Is(err, model.ErrUnauthorized) {
				log.Info("no valid saved session, waiting for a login")
			} else {
				log.WithError(err).Warning("unable to restore the previous session")
			}
		} else if err := a.dashboard.RefreshRepositories(cmd.Context()); err != nil {
			log.WithError(err).Warning("unable to load repositories of the restored session")
		}

		// setup server and define all routes
		gin.SetMode(gin.ReleaseMode)
		router := controller.NewRouter(*a.config, controller.NewAPIController(*a.config, a.dashboard))

		server := &http.Server{
			Addr:    ":" + a.config.API.ListenPort,
			Handler: router,
		}

		// wait for interrupt signal to gracefully shut down the server with a timeout of 15 seconds.
		// kill default send syscall.SIGTERM
		// kill -2 is syscall.SIGINT
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		return runServer(server, quit)
	},
}

// runServer serve until a signal is received on quit, a listen failure is returned right away
func runServer(server *http.Server, quit <-chan os.Signal) error {
	serveErr := make(chan error, 1)

	go func() {
		log.Info("server listening on " + server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		log.WithError(err).Error("error while starting server")
		return err

	case <-quit:
		log.Info("SIGINT, SIGTERM received, will shut down server ...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
		return err
	}

	log.Info("Application stopped gracefully !")
	return nil
}
