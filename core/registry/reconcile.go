package registry

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"asset-registry/core/utils"

	"go.uber.org/zap"
)

// Confirmation gates destructive tooling operations.
type Confirmation struct {
	// Confirmed is set once the user accepted the operation.
	Confirmed bool
	// DryRun reports what would change without touching anything.
	DryRun bool
}

func (c Confirmation) check() error {
	if c.DryRun || c.Confirmed {
		return nil
	}
	return ErrNotConfirmed
}

// ReapplyAllLabels overwrites every entry's labels with the single displayed
// label whose range contains the entry id. Running it twice changes nothing the
// second time. Returns the number of entries whose labels changed.
func (r *Registry[V]) ReapplyAllLabels() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		return 0, ErrNotInitialized
	}

	if len(r.labels.Displayed()) == 0 {
		r.logger.Warn("No displayed labels, labels left untouched")
		return 0, nil
	}

	changed := 0
	for id, e := range r.entries {
		label, _ := r.labels.LabelFor(id)
		if len(e.Labels) == 1 && e.Labels[0] == label {
			continue
		}
		e.Labels = []string{label}
		changed++
	}

	r.logger.Info("Reapplied labels", zap.Int("changed", changed), zap.Int("total", len(r.entries)))
	return changed, nil
}

// ImportResult summarizes an import.
type ImportResult struct {
	// Added lists new ids in insertion order.
	Added []int
	// Skipped counts candidates whose reference was already registered.
	Skipped int
	// Rejected lists candidates whose filename or reference cannot be encoded.
	Rejected []Reference
}

// Import inserts every asset the resolver lists under label that is not yet
// referenced by an entry. Duplicate detection compares references, not
// filenames. New ids are allocated forward from the label's starting index.
func (r *Registry[V]) Import(ctx context.Context, enum Enumerator, group, label string) (*ImportResult, error) {
	if !r.Loaded() {
		return nil, ErrNotInitialized
	}
	start, err := r.labels.StartingIndex(label)
	if err != nil {
		return nil, err
	}

	candidates, err := enum.EnumerateByLabel(ctx, label, group)
	if err != nil {
		return nil, fmt.Errorf("%w: label %s: %w", ErrEnumerationFailure, label, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	known := make(map[Reference]struct{}, len(r.entries))
	for _, e := range r.entries {
		if !e.Reference.IsZero() {
			known[e.Reference] = struct{}{}
		}
	}

	result := &ImportResult{}
	for _, c := range candidates {
		if _, dup := known[c.Reference]; dup || c.Reference.IsZero() {
			r.logger.Debug("Skipping already registered asset", zap.String("reference", c.Reference.String()))
			result.Skipped++
			continue
		}

		e := &Entry[V]{
			Reference: c.Reference,
			Filename:  c.Filename,
			Labels:    []string{label},
		}
		if err := Validate(e); err != nil {
			r.logger.Warn("Skipping asset that cannot be stored", zap.String("reference", c.Reference.String()), zap.Error(err))
			result.Rejected = append(result.Rejected, c.Reference)
			continue
		}

		id := r.nextFree(start)
		e.ID = id
		r.entries[id] = e
		known[c.Reference] = struct{}{}
		result.Added = append(result.Added, id)
		r.logger.Debug("Imported asset", zap.Int("id", id), zap.String("reference", c.Reference.String()))
	}

	r.logger.Info("Import complete",
		zap.String("label", label),
		zap.Int("added", len(result.Added)),
		zap.Int("skipped", result.Skipped),
		zap.Int("rejected", len(result.Rejected)),
		zap.Int("total", len(r.entries)),
	)
	return result, nil
}

// ImportEligible runs Import for every import-eligible label in table order.
func (r *Registry[V]) ImportEligible(ctx context.Context, enum Enumerator, group string) (*ImportResult, error) {
	total := &ImportResult{}
	for _, label := range r.labels.InScope(ScopeImport) {
		res, err := r.Import(ctx, enum, group, label)
		if err != nil {
			return total, err
		}
		total.Added = append(total.Added, res.Added...)
		total.Skipped += res.Skipped
		total.Rejected = append(total.Rejected, res.Rejected...)
	}
	return total, nil
}

// RenameAddressesToID sets the resolver address of every referenced asset to
// its registry id. Individual failures are collected and do not stop the sweep.
// With DryRun set it only counts the assets that would be renamed.
func (r *Registry[V]) RenameAddressesToID(ctx context.Context, addr Addresser, confirm Confirmation) (int, error) {
	if !r.Loaded() {
		return 0, ErrNotInitialized
	}
	if err := confirm.check(); err != nil {
		return 0, err
	}

	pending := r.pending()
	if confirm.DryRun {
		return len(pending), nil
	}

	renamed := 0
	var errs []error
	for _, p := range pending {
		if err := addr.SetAddress(ctx, p.ref, utils.FormatID(p.id)); err != nil {
			r.logger.Error("Failed to rename address", zap.Int("id", p.id), zap.String("reference", p.ref.String()), zap.Error(err))
			errs = append(errs, fmt.Errorf("id %d: %w", p.id, err))
			continue
		}
		renamed++
	}
	return renamed, errors.Join(errs...)
}

// FixBrokenReference re-points a stale flat record at the resolver entry whose
// base name matches the record's filename, keeping the record's labels. When the
// record has no filename the base name of its old reference is used instead.
// ok is false when nothing matches.
func FixBrokenReference(record string, candidates []ResolverEntry) (fixed string, ok bool, err error) {
	e, err := Decode[struct{}](record)
	if err != nil {
		return "", false, err
	}

	name := baseName(e.Filename)
	if name == "" {
		name = baseName(e.Reference.String())
	}
	if name == "" {
		return "", false, nil
	}

	for _, c := range candidates {
		if baseName(c.Path) != name {
			continue
		}
		e.Reference = c.Reference
		if e.Filename == "" {
			e.Filename = name
		}
		fixed, err := Encode(e)
		if err != nil {
			return "", false, err
		}
		return fixed, true, nil
	}
	return "", false, nil
}

// RepairResult is the outcome of FixBrokenReferences.
type RepairResult struct {
	// Entries is the corrected flat map. Unmatched records are absent.
	Entries map[string]string
	// Fixed counts records that matched a candidate.
	Fixed int
	// Dropped lists keys that were malformed or matched nothing.
	Dropped []string
}

// FixBrokenReferences applies FixBrokenReference to a whole flat map. It is a
// best-effort repair: unmatched and malformed records are dropped.
func FixBrokenReferences(entries map[string]string, candidates []ResolverEntry) *RepairResult {
	res := &RepairResult{Entries: make(map[string]string, len(entries))}
	for key, record := range entries {
		fixed, ok, err := FixBrokenReference(record, candidates)
		if err != nil || !ok {
			res.Dropped = append(res.Dropped, key)
			continue
		}
		res.Entries[key] = fixed
		res.Fixed++
	}
	sortKeys(res.Dropped)
	return res
}

func baseName(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return ""
	}
	b := path.Base(p)
	if b == "." || b == "/" {
		return ""
	}
	return b
}
