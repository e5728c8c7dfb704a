package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"asset-registry/core/reconcile"
	"asset-registry/core/registry"
	"asset-registry/feature/audit"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the audit command
	purgeEntries bool
	syncEntries  bool
	checkRef     string
)

// auditCmd reconciles the registry against the catalog and storage.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit registry entries against the catalog and storage (report + optionally purge/sync)",
	Long: `Audit registry entries against the catalog manifest and the storage bucket.

Reports broken references, entries missing from the registry, missing blobs,
orphan blobs and filename or label drift.
Optionally purge entries and blobs missing in any store, or sync drifted filenames.

Examples:
  # Report only
  audit

  # Inspect one catalog reference
  audit --ref 6f1c...

  # Purge with interactive confirmation
  audit --purge

  # Purge and sync with auto-confirm (non-interactive)
  audit --purge --sync --yes`,
	RunE: withApp(runAudit),
}

func init() {
	auditCmd.Flags().BoolVar(&purgeEntries, "purge", false, "Enable purge (drop entries, unregister assets, delete orphan blobs)")
	auditCmd.Flags().BoolVar(&syncEntries, "sync", false, "Enable sync (update entry filenames from the catalog)")
	auditCmd.Flags().StringVar(&checkRef, "ref", "", "Only report the given catalog reference")
	addConfirmFlags(auditCmd)

	RootCmd.AddCommand(auditCmd)
}

func runAudit(ctx context.Context, a *app, _ []string) error {
	l := a.log
	if err := a.load(ctx); err != nil {
		return err
	}

	auditor := audit.New(a.cfg.Audit, a.registry(), a.resolver, a.client, a.cfg.Storage.Bucket, a.service.Group(), l)

	if checkRef != "" {
		res, err := auditor.Check(ctx, registry.Reference(checkRef))
		if err != nil {
			return fmt.Errorf("failed to check reference: %w", err)
		}
		l.Info("Reference audit",
			zap.String("reference", res.ID),
			zap.String("name", res.Name),
			zap.Bool("record", res.RecordPresent),
			zap.Bool("catalog", res.CatalogPresent),
			zap.Bool("storage", res.StoragePresent),
			zap.Strings("mismatch", res.Mismatch),
		)
		return nil
	}

	opts := reconcile.Options{
		DoPurge: purgeEntries,
		DoSync:  syncEntries,
		DryRun:  dryRun,
	}

	l.Info("Planning audit...")
	plan, err := auditor.Plan(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to plan audit: %w", err)
	}

	printReconcileReport(l, plan)

	if !purgeEntries && !syncEntries {
		l.Info("No actions requested. Use --purge to drop incomplete entries or --sync to repair filenames.")
		return nil
	}
	if dryRun {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if len(plan.Actions) == 0 {
		l.Info("No actions required based on current flags.")
		return nil
	}

	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}
	opts.Confirmed = true

	l.Info("Applying actions...")
	executed, err := auditor.Apply(ctx, plan, opts)
	if executed > 0 {
		// Entry drops and filename syncs only exist in memory until saved
		if saveErr := a.save(ctx); saveErr != nil {
			return saveErr
		}
	}
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}

	l.Info("Successfully executed actions", zap.Int("count", executed))
	return nil
}

// printReconcileReport prints a formatted audit report using logger.
func printReconcileReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Audit report",
		zap.Int("total_items", s.TotalItems),
		zap.Int("not_imported", s.NotImported),
		zap.Int("broken_references", s.BrokenReferences),
		zap.Int("missing_storage", s.MissingStorage),
		zap.Int("orphans", s.Orphans),
		zap.Int("mismatches", s.Mismatches),
	)

	if len(plan.Actions) == 0 {
		return
	}

	l.Info("Planned actions",
		zap.Int("purge_actions", s.PurgeActions),
		zap.Int("sync_actions", s.SyncActions),
		zap.Int("total_actions", len(plan.Actions)),
	)

	maxShow := min(5, len(plan.Actions))
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// addConfirmFlags registers --yes and --dry-run on a destructive command.
func addConfirmFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	cmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}

// confirmation turns the --dry-run and --yes flags into a registry Confirmation,
// prompting when neither is set.
func confirmation() registry.Confirmation {
	if dryRun {
		return registry.Confirmation{DryRun: true}
	}
	return registry.Confirmation{Confirmed: confirmDestructiveAction()}
}
