package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"asset-registry/core/registry"
	"asset-registry/core/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	labelStart  int
	removeScope string
	skipCatalog bool
)

// labelsCmd is the parent command for label table operations.
var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Manage the registry label table",
}

var labelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List labels with their starting index and scopes",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		if err := a.load(ctx); err != nil {
			return err
		}

		t := a.registry().Labels()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LABEL\tSTART\tDISPLAY\tIMPORT\tMANAGEMENT")
		for _, s := range t.Starts() {
			fmt.Fprintf(w, "%s\t%d\t%t\t%t\t%t\n", s.Name, s.Start,
				t.Scope(s.Name, registry.ScopeDisplay),
				t.Scope(s.Name, registry.ScopeImport),
				t.Scope(s.Name, registry.ScopeManagement),
			)
		}
		return w.Flush()
	}),
}

var labelsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Append a label to the table and declare it in the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runLabelsAdd),
}

var labelsRemoveCmd = &cobra.Command{
	Use:   "remove [name...]",
	Short: "Remove labels from the table and strip them from the catalog",
	Long: `Remove deletes the named labels, or every label whose --scope flag is set.
Removed labels are also undeclared in the catalog unless --skip-catalog is given.
Entries keep their labels; run relabel afterwards to reassign them.`,
	RunE: withApp(runLabelsRemove),
}

var labelsSetIndexCmd = &cobra.Command{
	Use:   "set-index <name> <start>",
	Short: "Overwrite a label's starting index",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		start, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid starting index %q: %w", args[1], err)
		}
		if err := a.load(ctx); err != nil {
			return err
		}
		if err := a.registry().Labels().SetStartingIndex(args[0], start); err != nil {
			return err
		}
		return a.save(ctx)
	}),
}

var labelsReorderCmd = &cobra.Command{
	Use:   "reorder",
	Short: "Sort displayed labels by starting index and renumber them by position",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		if err := a.load(ctx); err != nil {
			return err
		}
		a.registry().Labels().ReorderByStartingIndex()
		return a.save(ctx)
	}),
}

var labelsScopeCmd = &cobra.Command{
	Use:   "scope <name> <display|import|management> <on|off>",
	Short: "Toggle a label scope flag in the preference store",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		scope, err := registry.ParseScope(args[1])
		if err != nil {
			return err
		}
		if err := a.load(ctx); err != nil {
			return err
		}

		t := a.registry().Labels()
		if !t.Has(args[0]) {
			return fmt.Errorf("%w: %s", registry.ErrUnknownLabel, args[0])
		}
		value := utils.ToBool(args[2]) || args[2] == "on"
		t.SetScope(args[0], scope, value)
		a.log.Info("Label scope updated", zap.String("label", args[0]), zap.Stringer("scope", scope), zap.Bool("value", value))
		return nil
	}),
}

func init() {
	labelsAddCmd.Flags().IntVar(&labelStart, "start", -1, "Starting index (default: spaced after the last label)")
	labelsAddCmd.Flags().BoolVar(&skipCatalog, "skip-catalog", false, "Do not touch the catalog labels")
	labelsRemoveCmd.Flags().StringVar(&removeScope, "scope", "", "Remove every label with this scope set (display, import, management)")
	labelsRemoveCmd.Flags().BoolVar(&skipCatalog, "skip-catalog", false, "Do not touch the catalog labels")
	addConfirmFlags(labelsRemoveCmd)

	labelsCmd.AddCommand(labelsListCmd, labelsAddCmd, labelsRemoveCmd, labelsSetIndexCmd, labelsReorderCmd, labelsScopeCmd)
	RootCmd.AddCommand(labelsCmd)
}

func runLabelsAdd(ctx context.Context, a *app, args []string) error {
	name := args[0]
	if err := a.load(ctx); err != nil {
		return err
	}

	t := a.registry().Labels()
	start, err := t.AddLabel(name)
	if err != nil {
		return err
	}
	if labelStart >= 0 {
		if err := t.SetStartingIndex(name, labelStart); err != nil {
			return err
		}
		start = labelStart
	}

	if !skipCatalog {
		if err := a.resolver.AddLabel(ctx, name); err != nil {
			return fmt.Errorf("failed to declare catalog label: %w", err)
		}
	}
	if err := a.save(ctx); err != nil {
		return err
	}

	a.log.Info("Added label", zap.String("label", name), zap.Int("start", start))
	return nil
}

func runLabelsRemove(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 && removeScope == "" {
		return errors.New("name a label or pass --scope")
	}
	if err := a.load(ctx); err != nil {
		return err
	}

	t := a.registry().Labels()
	var scope registry.Scope
	if removeScope != "" {
		s, err := registry.ParseScope(removeScope)
		if err != nil {
			return err
		}
		scope = s
	}

	targets := args
	if removeScope != "" {
		targets = t.InScope(scope)
	}
	if len(targets) == 0 {
		a.log.Info("No labels to remove")
		return nil
	}

	a.log.Warn("Labels will be removed", zap.Strings("labels", targets))
	confirm := confirmation()
	if confirm.DryRun {
		a.log.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if !confirm.Confirmed {
		a.log.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	var removed []string
	if removeScope != "" {
		removed = t.RemoveInScope(scope)
	} else {
		removed = t.RemoveLabels(targets)
	}

	if !skipCatalog {
		if err := a.resolver.RemoveLabels(ctx, removed); err != nil {
			return fmt.Errorf("failed to remove catalog labels: %w", err)
		}
	}
	if err := a.save(ctx); err != nil {
		return err
	}

	a.log.Info("Removed labels", zap.Strings("labels", removed))
	return nil
}
