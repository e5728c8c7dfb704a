package cmd

import (
	"context"
	"fmt"

	"asset-registry/core/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	catalogGroup  string
	catalogLabels []string
)

// catalogCmd is the parent command for catalog manifest operations.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the asset catalog manifest",
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <object-path>",
	Short: "Register a stored blob in the catalog under a new reference",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		group := catalogGroup
		if group == "" {
			group = a.cfg.Registry.Group
		}
		item, err := a.resolver.Register(ctx, args[0], group, catalogLabels)
		if err != nil {
			return fmt.Errorf("failed to register asset: %w", err)
		}
		fmt.Println(item.GUID)
		return nil
	}),
}

var catalogRemoveCmd = &cobra.Command{
	Use:   "remove <reference>",
	Short: "Remove an asset from the catalog, keeping its blob",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.resolver.Unregister(ctx, registry.Reference(args[0])); err != nil {
			return fmt.Errorf("failed to unregister asset: %w", err)
		}
		a.log.Info("Unregistered asset", zap.String("reference", args[0]))
		return nil
	}),
}

var catalogGroupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List catalog groups",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		groups, err := a.resolver.Groups(ctx)
		if err != nil {
			return err
		}
		for _, g := range groups {
			fmt.Println(g)
		}
		return nil
	}),
}

func init() {
	catalogAddCmd.Flags().StringVar(&catalogGroup, "group", "", "Catalog group (default: the registry group)")
	catalogAddCmd.Flags().StringSliceVar(&catalogLabels, "label", nil, "Catalog labels (repeatable)")

	catalogCmd.AddCommand(catalogAddCmd, catalogRemoveCmd, catalogGroupsCmd)
	RootCmd.AddCommand(catalogCmd)
}
