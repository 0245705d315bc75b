package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/harmonia-mir/harmonia/api"
	"github.com/harmonia-mir/harmonia/logging"
)

const shutdownTimeout = 10 * time.Second

var (
	serveHost string
	servePort int
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "bind address (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the harmonic analysis HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			settings.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			settings.Server.Port = servePort
		}
		if err := settings.Validate(); err != nil {
			return err
		}

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		if _, err := api.New(e, settings, Version); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := logging.WithFields(logging.Fields{"component": "server"})
		logger.Info("listening", logging.Fields{"address": settings.Server.Address()})

		errCh := make(chan error, 1)
		go func() {
			errCh <- e.Start(settings.Server.Address())
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := e.Shutdown(shutdownCtx); err != nil {
				return err
			}
			logger.Info("server stopped")
		}
		return nil
	},
}
