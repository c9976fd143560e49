package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/internal/api"
	"github.com/goliatone/go-catalog-cache/internal/maintenance"
	"github.com/goliatone/go-catalog-cache/pkg/di"
	"github.com/goliatone/go-catalog-cache/pkg/logger"
)

func (c *cli) serveCmd() *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run scheduled eviction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *di.Container) error {
				cfg := container.Config()
				if address != "" {
					cfg.Server.Address = address
				}
				return serve(ctx, cmd, container, cfg.Server.Address)
			})
		},
	}
	cmd.Flags().StringVar(&address, "addr", "", "listen address (overrides server.address)")
	return cmd
}

func serve(ctx context.Context, cmd *cobra.Command, container *di.Container, address string) (err error) {
	cfg := container.Config()
	log := logger.WithModule("server")

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(container.Repository(),
		api.WithMetrics(cfg.Server.Metrics),
		api.WithPageSize(cfg.Repository.PageSize),
	)
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	var cleaner *maintenance.Cleaner
	if cfg.Maintenance.Enabled {
		cleaner = maintenance.NewCleaner(container.Repository(), maintenance.WithSchedule(cfg.Maintenance.Schedule))
		if err := cleaner.Start(); err != nil {
			return fmt.Errorf("start maintenance: %w", err)
		}
	}

	ln, err := net.Listen("tcp", address)
	if err != nil {
		if cleaner != nil {
			<-cleaner.Stop().Done()
		}
		return fmt.Errorf("listen: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", ln.Addr())

	server := &http.Server{Handler: router}
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if cleaner != nil {
			<-cleaner.Stop().Done()
		}
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if serr := server.Shutdown(shutdownCtx); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
		err = multierr.Append(err, fmt.Errorf("graceful shutdown: %w", serr))
	}
	if serr, ok := <-serverErr; ok && serr != nil {
		err = multierr.Append(err, fmt.Errorf("server error: %w", serr))
	}
	if cleaner != nil {
		select {
		case <-cleaner.Stop().Done():
		case <-shutdownCtx.Done():
			err = multierr.Append(err, errors.New("maintenance job did not finish before shutdown timeout"))
		}
	}

	if err == nil {
		log.Info("server stopped gracefully")
	}
	return err
}
