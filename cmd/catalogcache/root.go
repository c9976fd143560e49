// Command catalogcache browses the creature catalog through the local cache.
package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/goliatone/go-catalog-cache/internal/app"
	"github.com/goliatone/go-catalog-cache/pkg/di"
	"github.com/goliatone/go-catalog-cache/pkg/logger"
	"github.com/goliatone/go-catalog-cache/repository"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

type cli struct {
	configFile string
	compact    bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "catalogcache",
		Short:         "Offline-capable catalog browser backed by a local cache",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "configuration file (default: ./catalogcache.yaml)")
	root.PersistentFlags().BoolVar(&c.compact, "compact", false, "print JSON on a single line")

	root.AddCommand(
		c.listCmd(),
		c.showCmd(),
		c.typeCmd(),
		c.filterCmd(),
		c.evictCmd(),
		c.clearCmd(),
		c.serveCmd(),
		versionCmd(),
	)
	return root
}

// loadConfig reads configuration and initialises the global logger.
func (c *cli) loadConfig() (*app.Config, error) {
	cfg, err := app.LoadConfig(c.configFile)
	if err != nil {
		return nil, err
	}
	if err := app.ConfigureLogging(cfg.Log); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	return cfg, nil
}

// withContainer builds the components for one command and releases them
// afterwards.
func (c *cli) withContainer(cmd *cobra.Command, fn func(ctx context.Context, container *di.Container) error) (err error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	container, err := di.NewContainer(ctx, *cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, container.Close())
	}()

	return fn(ctx, container)
}

// printResult writes the value of a successful result as JSON, or returns
// its failure.
func printResult[T any](cmd *cobra.Command, c *cli, res repository.Result[T]) error {
	v, err := res.Unwrap()
	if err != nil {
		return err
	}
	return c.printJSON(cmd, v)
}

func (c *cli) printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if !c.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
