package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"asset-registry/core/registry"
	"asset-registry/core/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	listLabel     string
	addLabel      string
	importLabels  []string
	removeInPlace bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the persisted registry record if it does not exist",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		if err := a.service.Ensure(ctx); err != nil {
			return fmt.Errorf("failed to ensure record: %w", err)
		}
		a.log.Info("Registry record ready", zap.String("registry", a.cfg.Registry.Type))
		return nil
	}),
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the registry and resolve every entry through the catalog",
	RunE:  withApp(runLoad),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registry entries",
	RunE:  withApp(runList),
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Allocate the next free id in a label and insert an empty entry",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		if err := a.load(ctx); err != nil {
			return err
		}
		id, err := a.registry().AddEntry(addLabel)
		if err != nil {
			return fmt.Errorf("failed to add entry: %w", err)
		}
		if err := a.save(ctx); err != nil {
			return err
		}
		a.log.Info("Added entry", zap.Int("id", id), zap.String("label", addLabel))
		return nil
	}),
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an entry by id",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runRemove),
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import catalog assets that are not referenced yet",
	Long: `Import inserts every catalog asset carrying a label that no entry references yet.
Without --label every import-eligible label is imported in table order.`,
	RunE: withApp(runImport),
}

var relabelCmd = &cobra.Command{
	Use:   "relabel",
	Short: "Reset every entry's labels to the displayed label covering its id",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		if err := a.load(ctx); err != nil {
			return err
		}
		changed, err := a.registry().ReapplyAllLabels()
		if err != nil {
			return fmt.Errorf("failed to relabel: %w", err)
		}
		if changed == 0 {
			return nil
		}
		return a.save(ctx)
	}),
}

func init() {
	listCmd.Flags().StringVar(&listLabel, "label", "", "Only list entries carrying this label")
	addCmd.Flags().StringVar(&addLabel, "label", "", "Label to allocate the id in")
	_ = addCmd.MarkFlagRequired("label")
	removeCmd.Flags().BoolVar(&removeInPlace, "in-place", false, "Edit the persisted record without decoding the registry")
	importCmd.Flags().StringSliceVar(&importLabels, "label", nil, "Labels to import (repeatable)")

	RootCmd.AddCommand(initCmd, loadCmd, listCmd, addCmd, removeCmd, importCmd, relabelCmd)
}

func runLoad(ctx context.Context, a *app, _ []string) error {
	res, err := a.service.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}

	a.log.Info("Registry initialized",
		zap.Int("total", res.Total),
		zap.Int("resolved", res.Resolved),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
		zap.Int64("bytes", res.Bytes),
		zap.Duration("duration", res.Duration),
	)

	for _, an := range a.registry().Anomalies() {
		a.log.Warn("Entry label not in label table", zap.Int("id", an.ID), zap.String("label", an.Label))
	}
	logCounters(a)
	return nil
}

// logCounters writes the collected resolution counters at debug level.
func logCounters(a *app) {
	families, err := a.metrics.Gather()
	if err != nil {
		a.log.Debug("Failed to gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			fields := []zap.Field{zap.String("metric", mf.GetName()), zap.Float64("value", m.GetCounter().GetValue())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			a.log.Debug("Counter", fields...)
		}
	}
}

func runList(ctx context.Context, a *app, _ []string) error {
	if err := a.load(ctx); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tREFERENCE\tLABELS")
	for _, e := range a.registry().Entries() {
		if listLabel != "" && !e.HasLabel(listLabel) {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.Filename, e.Reference, strings.Join(e.Labels, ","))
	}
	return w.Flush()
}

func runRemove(ctx context.Context, a *app, args []string) error {
	id, err := utils.ParseID(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}

	if removeInPlace {
		removed, err := a.service.Adapter().RemoveEntry(ctx, a.cfg.Registry.Type, id)
		if err != nil {
			return fmt.Errorf("failed to remove entry: %w", err)
		}
		if !removed {
			return fmt.Errorf("%w: %d", registry.ErrEntryNotFound, id)
		}
		return nil
	}

	if err := a.load(ctx); err != nil {
		return err
	}
	if err := a.registry().Remove(id); err != nil {
		return fmt.Errorf("failed to remove entry: %w", err)
	}
	if err := a.save(ctx); err != nil {
		return err
	}
	a.log.Info("Removed entry", zap.Int("id", id))
	return nil
}

func runImport(ctx context.Context, a *app, _ []string) error {
	if err := a.load(ctx); err != nil {
		return err
	}

	reg := a.registry()
	group := a.service.Group()

	var (
		res *registry.ImportResult
		err error
	)
	if len(importLabels) == 0 {
		res, err = reg.ImportEligible(ctx, a.resolver, group)
	} else {
		res = &registry.ImportResult{}
		for _, label := range importLabels {
			var r *registry.ImportResult
			r, err = reg.Import(ctx, a.resolver, group, label)
			if err != nil {
				break
			}
			res.Added = append(res.Added, r.Added...)
			res.Skipped += r.Skipped
			res.Rejected = append(res.Rejected, r.Rejected...)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}

	a.log.Info("Import finished", zap.Int("added", len(res.Added)), zap.Int("skipped", res.Skipped), zap.Int("rejected", len(res.Rejected)))
	if len(res.Added) == 0 {
		return nil
	}
	return a.save(ctx)
}
