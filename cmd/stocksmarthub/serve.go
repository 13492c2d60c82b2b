package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpDelivery "github.com/stocksmarthub/backend/internal/delivery/http"
	"github.com/stocksmarthub/backend/internal/infrastructure/sqlstore"
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the image API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		resolver, err := a.resolver()
		if err != nil {
			return err
		}
		orch, err := a.orchestrator()
		if err != nil {
			return err
		}
		reconciler, err := a.reconciler()
		if err != nil {
			return err
		}

		handler := httpDelivery.NewHandler(resolver, orch, reconciler, a.products(), sqlstore.NewSummaryRepository(a.db), a.logger)
		router := httpDelivery.SetupRouter(a.cfg, handler, a.metrics.Registry, a.logger)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%s", a.cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			a.logger.Info("server listening", "addr", srv.Addr, "environment", a.cfg.Server.Environment)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			a.logger.Info("shutting down server")
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
