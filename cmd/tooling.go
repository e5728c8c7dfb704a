package cmd

import (
	"context"
	"errors"
	"fmt"

	"asset-registry/core/registry"
	"asset-registry/feature/catalog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var renameCmd = &cobra.Command{
	Use:   "rename-to-id",
	Short: "Set the catalog address of every referenced asset to its registry id",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		if err := a.load(ctx); err != nil {
			return err
		}

		renamed, err := a.registry().RenameAddressesToID(ctx, a.resolver, confirmation())
		if errors.Is(err, registry.ErrNotConfirmed) {
			a.log.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
		if dryRun {
			a.log.Info("Dry-run mode: assets that would be renamed", zap.Int("count", renamed))
			return nil
		}
		if err != nil {
			return fmt.Errorf("renamed %d assets with failures: %w", renamed, err)
		}
		a.log.Info("Renamed assets", zap.Int("count", renamed))
		return nil
	}),
}

var fixReferencesCmd = &cobra.Command{
	Use:   "fix-references",
	Short: "Re-point stale entries at catalog assets with the same file name",
	Long: `Fix-references rewrites the persisted record in place. Every entry is matched
by file name against the assets of the registry group. Entries that match nothing
or cannot be decoded are dropped.`,
	RunE: withApp(runFixReferences),
}

var resetAddressesCmd = &cobra.Command{
	Use:   "reset-addresses",
	Short: "Reset every catalog address in the registry group back to the asset path",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		group := a.cfg.Registry.Group
		if dryRun {
			addrs, err := a.resolver.Addresses(ctx, group)
			if err != nil {
				return err
			}
			a.log.Info("Dry-run mode: addresses in group", zap.String("group", group), zap.Int("count", len(addrs)))
			return nil
		}
		if !confirmDestructiveAction() {
			a.log.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		changed, err := a.resolver.ResetAddresses(ctx, group)
		if err != nil {
			return fmt.Errorf("failed to reset addresses: %w", err)
		}
		a.log.Info("Reset addresses", zap.String("group", group), zap.Int("changed", changed))
		return nil
	}),
}

var saveGroupCmd = &cobra.Command{
	Use:   "save-group",
	Short: "Move every referenced asset into the registry group with the entry's labels",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		if err := a.load(ctx); err != nil {
			return err
		}

		var placements []catalog.Placement
		for _, e := range a.registry().Entries() {
			if e.Reference.IsZero() {
				continue
			}
			placements = append(placements, catalog.Placement{Reference: e.Reference, Labels: e.Labels})
		}

		saved, skipped, err := a.resolver.SaveEntries(ctx, a.service.Group(), placements)
		if err != nil {
			return fmt.Errorf("failed to save entries to catalog: %w", err)
		}
		if skipped > 0 {
			a.log.Warn("Entries not found in catalog", zap.Int("skipped", skipped))
		}
		a.log.Info("Saved group", zap.Int("saved", saved))
		return nil
	}),
}

func init() {
	addConfirmFlags(renameCmd)
	addConfirmFlags(fixReferencesCmd)
	addConfirmFlags(resetAddressesCmd)

	RootCmd.AddCommand(renameCmd, fixReferencesCmd, resetAddressesCmd, saveGroupCmd)
}

func runFixReferences(ctx context.Context, a *app, _ []string) error {
	adapter := a.service.Adapter()
	rec, err := adapter.Raw(ctx, a.cfg.Registry.Type)
	if err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}

	group := rec.Group
	if group == "" {
		group = a.cfg.Registry.Group
	}
	candidates, err := a.resolver.Candidates(ctx, group)
	if err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}

	res := registry.FixBrokenReferences(rec.Entries, candidates)
	a.log.Info("Reference repair",
		zap.Int("entries", len(rec.Entries)),
		zap.Int("fixed", res.Fixed),
		zap.Int("dropped", len(res.Dropped)),
	)
	for _, key := range res.Dropped {
		a.log.Warn("Entry will be dropped", zap.String("id", key), zap.String("record", rec.Entries[key]))
	}

	confirm := confirmation()
	if confirm.DryRun {
		a.log.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if !confirm.Confirmed {
		a.log.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	rec.Entries = res.Entries
	if err := adapter.SaveRaw(ctx, rec); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}
