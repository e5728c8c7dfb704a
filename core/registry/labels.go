package registry

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"asset-registry/core/prefs"
)

// DefaultLabelSpacing is the gap between default starting indices of new labels.
const DefaultLabelSpacing = 1000

// Scope selects one of the independent per-label flags.
type Scope int

const (
	// ScopeDisplay marks labels that partition the id space and can be allocated in.
	ScopeDisplay Scope = iota
	// ScopeImport marks labels picked up by bulk import.
	ScopeImport
	// ScopeManagement marks labels selected for label management actions.
	ScopeManagement
)

func (s Scope) String() string {
	switch s {
	case ScopeDisplay:
		return "Display"
	case ScopeImport:
		return "Import"
	case ScopeManagement:
		return "Management"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// ParseScope maps a case-insensitive scope name to a Scope.
func ParseScope(name string) (Scope, error) {
	switch strings.ToLower(name) {
	case "display":
		return ScopeDisplay, nil
	case "import":
		return ScopeImport, nil
	case "management":
		return ScopeManagement, nil
	default:
		return 0, fmt.Errorf("unknown label scope %q", name)
	}
}

// Preferences is the host store for per-user toggle state. Starting indices
// are not mirrored here; the persisted record owns them.
type Preferences interface {
	Bool(key string) bool
	SetBool(key string, value bool)
}

// LabelStart is one persisted label and its starting index.
type LabelStart struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
}

// LabelTable is the ordered mapping of label name to starting index.
// Scope flags live in Preferences, keyed by the owning window name.
type LabelTable struct {
	window string
	prefs  Preferences
	labels []LabelStart
}

// NewLabelTable creates an empty table. A nil Preferences keeps flags in memory.
func NewLabelTable(window string, p Preferences) *LabelTable {
	if p == nil {
		p = prefs.NewMemory()
	}
	return &LabelTable{window: window, prefs: p}
}

// Load replaces the table with persisted labels and marks every one displayed.
// Repeated names and names that fail ValidateLabel are skipped.
func (t *LabelTable) Load(starts []LabelStart) {
	t.labels = t.labels[:0]
	for _, s := range starts {
		if ValidateLabel(s.Name) != nil || t.index(s.Name) >= 0 {
			continue
		}
		t.labels = append(t.labels, s)
		if !t.Scope(s.Name, ScopeDisplay) {
			t.SetScope(s.Name, ScopeDisplay, true)
		}
	}
}

// Len returns the number of labels.
func (t *LabelTable) Len() int {
	return len(t.labels)
}

// Has reports whether name is a known label.
func (t *LabelTable) Has(name string) bool {
	return t.index(name) >= 0
}

// Labels returns all label names in table order.
func (t *LabelTable) Labels() []string {
	names := make([]string, len(t.labels))
	for i, l := range t.labels {
		names[i] = l.Name
	}
	return names
}

// Starts returns a copy of the ordered table for persistence.
func (t *LabelTable) Starts() []LabelStart {
	return slices.Clone(t.labels)
}

// StartingIndex returns the starting index of name.
func (t *LabelTable) StartingIndex(name string) (int, error) {
	i := t.index(name)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLabel, name)
	}
	return t.labels[i].Start, nil
}

// AddLabel appends name with a default starting index spaced by DefaultLabelSpacing.
func (t *LabelTable) AddLabel(name string) (int, error) {
	if err := ValidateLabel(name); err != nil {
		return 0, err
	}
	if t.Has(name) {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateLabel, name)
	}
	start := len(t.labels) * DefaultLabelSpacing
	t.labels = append(t.labels, LabelStart{Name: name, Start: start})
	return start, nil
}

// SetStartingIndex overwrites the starting index of name.
func (t *LabelTable) SetStartingIndex(name string, value int) error {
	i := t.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLabel, name)
	}
	t.labels[i].Start = value
	return nil
}

// RemoveLabel deletes name unconditionally and clears its scope flags, so a
// label re-added under the same name starts with every flag off.
// Confirmation belongs to the caller.
func (t *LabelTable) RemoveLabel(name string) error {
	i := t.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLabel, name)
	}
	t.labels = slices.Delete(t.labels, i, i+1)
	t.clearScopes(name)
	return nil
}

// RemoveLabels deletes every named label that exists and returns the ones removed.
func (t *LabelTable) RemoveLabels(names []string) []string {
	var removed []string
	for _, name := range names {
		if err := t.RemoveLabel(name); err == nil {
			removed = append(removed, name)
		}
	}
	return removed
}

// RemoveInScope deletes every label whose flag for scope is set and returns their names.
func (t *LabelTable) RemoveInScope(scope Scope) []string {
	var removed []string
	t.labels = slices.DeleteFunc(t.labels, func(l LabelStart) bool {
		if t.Scope(l.Name, scope) {
			removed = append(removed, l.Name)
			return true
		}
		return false
	})
	for _, name := range removed {
		t.clearScopes(name)
	}
	return removed
}

// Scope reports the flag for scope on name.
func (t *LabelTable) Scope(name string, scope Scope) bool {
	return t.prefs.Bool(t.scopeKey(name, scope))
}

// SetScope sets the flag for scope on name.
func (t *LabelTable) SetScope(name string, scope Scope, value bool) {
	t.prefs.SetBool(t.scopeKey(name, scope), value)
}

// InScope returns the labels whose flag for scope is set, in table order.
func (t *LabelTable) InScope(scope Scope) []string {
	var names []string
	for _, l := range t.labels {
		if t.Scope(l.Name, scope) {
			names = append(names, l.Name)
		}
	}
	return names
}

// Displayed returns the displayed labels in table order.
func (t *LabelTable) Displayed() []string {
	return t.InScope(ScopeDisplay)
}

// ReorderByStartingIndex stably sorts the displayed labels by starting index and
// rewrites each one's index to its ordinal position. Previous spacing is lost.
func (t *LabelTable) ReorderByStartingIndex() {
	var positions []int
	var displayed []LabelStart
	for i, l := range t.labels {
		if t.Scope(l.Name, ScopeDisplay) {
			positions = append(positions, i)
			displayed = append(displayed, l)
		}
	}

	sort.SliceStable(displayed, func(i, j int) bool {
		return displayed[i].Start < displayed[j].Start
	})

	for ordinal, l := range displayed {
		l.Start = ordinal
		t.labels[positions[ordinal]] = l
	}
}

// LabelFor returns the displayed label whose range contains id.
// Ranges are [start_i, start_i+1) over displayed labels sorted by start; ids below
// the first start belong to the first label and the last range is unbounded.
func (t *LabelTable) LabelFor(id int) (string, bool) {
	ranges := t.displayedRanges()
	if len(ranges) == 0 {
		return "", false
	}
	for i := 0; i < len(ranges)-1; i++ {
		if id < ranges[i+1].Start {
			return ranges[i].Name, true
		}
	}
	return ranges[len(ranges)-1].Name, true
}

func (t *LabelTable) displayedRanges() []LabelStart {
	var ranges []LabelStart
	for _, l := range t.labels {
		if t.Scope(l.Name, ScopeDisplay) {
			ranges = append(ranges, l)
		}
	}
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].Start < ranges[j].Start
	})
	return ranges
}

func (t *LabelTable) index(name string) int {
	return slices.IndexFunc(t.labels, func(l LabelStart) bool { return l.Name == name })
}

func (t *LabelTable) scopeKey(label string, scope Scope) string {
	return fmt.Sprintf("%s_label_%s_%s", t.window, label, scope)
}

func (t *LabelTable) clearScopes(label string) {
	for _, scope := range []Scope{ScopeDisplay, ScopeImport, ScopeManagement} {
		if t.Scope(label, scope) {
			t.SetScope(label, scope, false)
		}
	}
}
