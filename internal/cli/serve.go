package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/andy/billing/internal/httpapi"
	"github.com/andy/billing/internal/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API over HTTP",
	Long: `Serve the clients, tasks and reports JSON API over HTTP until interrupted.

The listen address comes from the config file or BILLING_HTTP_ADDR and can be
overridden with --addr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appInstance.Config.Server
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}

		logger := appInstance.Logger.WithComponent(log.ComponentHTTP)
		api := httpapi.New(httpapi.Deps{
			Logger:  logger,
			Clients: appInstance.ClientRepo,
			Tasks:   appInstance.TaskRepo,
			Reports: appInstance.ReportService,
			Exports: appInstance.ExportService,
			Clock:   appInstance.Clock,
		})
		srv := api.HTTPServer(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("HTTP server listening", log.FieldAddr, cfg.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("Shutting down HTTP server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address, e.g. :8080")
}
