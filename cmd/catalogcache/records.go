package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-catalog-cache/mapper"
	"github.com/goliatone/go-catalog-cache/pkg/di"
	"github.com/goliatone/go-catalog-cache/repository"
)

func (c *cli) listCmd() *cobra.Command {
	var (
		page  int
		query string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a page of records, or search cached names with --query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *di.Container) error {
				return printResult(cmd, c, container.Repository().ListRecords(ctx, page, query))
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number, starting at 1")
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive name search over the cache")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|name|reference>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *di.Container) error {
				repo := container.Repository()
				arg := strings.TrimSpace(args[0])

				if id, err := strconv.Atoi(arg); err == nil {
					return printResult(cmd, c, repo.GetRecordDetails(ctx, id))
				}
				if strings.Contains(arg, "/") || mapper.IsOfflineReference(arg) {
					return printResult(cmd, c, repo.GetRecordByReference(ctx, arg))
				}
				return printResult(cmd, c, repo.GetRecordDetailsByName(ctx, arg))
			})
		},
	}
}

func (c *cli) typeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "type <id>",
		Short: "Print the primary type of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			return c.withContainer(cmd, func(ctx context.Context, container *di.Container) error {
				t, err := container.Repository().GetRecordType(ctx, id).Unwrap()
				if err != nil {
					return err
				}
				return c.printJSON(cmd, map[string]any{"id": id, "type": t})
			})
		},
	}
}

func (c *cli) filterCmd() *cobra.Command {
	var (
		typeName                     string
		minHP, minAttack, minDefense int
		orderBy                      string
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter cached records by type and minimum stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := repository.FilterOptions{OrderBy: orderBy}
			if cmd.Flags().Changed("type") {
				opts.Type = &typeName
			}
			if cmd.Flags().Changed("min-hp") {
				opts.MinHP = &minHP
			}
			if cmd.Flags().Changed("min-attack") {
				opts.MinAttack = &minAttack
			}
			if cmd.Flags().Changed("min-defense") {
				opts.MinDefense = &minDefense
			}

			return c.withContainer(cmd, func(ctx context.Context, container *di.Container) error {
				return printResult(cmd, c, container.Repository().GetFilteredRecords(ctx, opts))
			})
		},
	}
	cmd.Flags().StringVar(&typeName, "type", "", "type name substring")
	cmd.Flags().IntVar(&minHP, "min-hp", 0, "minimum hp")
	cmd.Flags().IntVar(&minAttack, "min-attack", 0, "minimum attack")
	cmd.Flags().IntVar(&minDefense, "min-defense", 0, "minimum defense")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "name, hp, attack or defense")
	return cmd
}

func (c *cli) evictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evict",
		Short: "Remove cached records older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *di.Container) error {
				deleted, err := container.Repository().ClearStaleCache(ctx).Unwrap()
				if err != nil {
					return err
				}
				return c.printJSON(cmd, map[string]int{"deleted": deleted})
			})
		},
	}
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *di.Container) error {
				deleted, err := container.Repository().ClearCache(ctx).Unwrap()
				if err != nil {
					return err
				}
				return c.printJSON(cmd, map[string]int{"deleted": deleted})
			})
		},
	}
}
